package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAgentKind(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected AgentKind
		wantErr  bool
	}{
		{name: "general", input: "general_agent", expected: AgentGeneral},
		{name: "companion", input: "companion_agent", expected: AgentCompanion},
		{name: "conversation analyzer", input: "conversation_analyzer_agent", expected: AgentConversationAnalyzer},
		{name: "conversation summarizer", input: "summarize_conversation", expected: AgentConversationSummarizer},
		{name: "journal analyzer", input: "journal_analyzer_agent", expected: AgentJournalAnalyzer},
		{name: "unknown", input: "helper_agent", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := ParseAgentKind(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownAgentKind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, kind)
		})
	}
}

func TestAgentKind_OwnsHistory(t *testing.T) {
	assert.True(t, AgentGeneral.OwnsHistory())
	assert.True(t, AgentCompanion.OwnsHistory())
	assert.False(t, AgentConversationAnalyzer.OwnsHistory())
	assert.False(t, AgentConversationSummarizer.OwnsHistory())
	assert.False(t, AgentJournalAnalyzer.OwnsHistory())
}
