package agents

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenhq/haven/internal/domain"
	"github.com/havenhq/haven/internal/llm"
	"github.com/havenhq/haven/internal/storage/history"
	"github.com/havenhq/haven/internal/storage/kvstore/inmemory"
	"github.com/havenhq/haven/internal/storage/sessions"
)

type stubModel struct {
	mu       sync.Mutex
	requests []llm.GenerateRequest
	content  string
	err      error
}

func (m *stubModel) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	return &llm.Response{Content: m.content, Model: m.ID()}, nil
}

func (m *stubModel) ID() string { return "stub/test-model" }

func newTestHistory(t *testing.T) domain.HistoryStore {
	t.Helper()

	kv := inmemory.New()
	registry := sessions.NewRegistry(sessions.RegistryDependencies{
		Store: kv,
		TTL:   time.Hour,
	})

	return history.NewStore(history.StoreDependencies{
		Store:    kv,
		Registry: registry,
		TTL:      time.Hour,
	})
}

func TestGeneralAgent_Run(t *testing.T) {
	model := &stubModel{content: `{"response": "hello back"}`}
	historyStore := newTestHistory(t)

	agent := NewGeneralAgent(GeneralAgentDependencies{
		Model:   model,
		History: historyStore,
	})

	state, err := agent.Run(context.Background(), domain.WorkflowState{
		UserID:     "u1",
		WorkflowID: "w1",
		Agent:      domain.AgentGeneral,
		UserInput:  &domain.UserInput{Response: "hello"},
	})
	require.NoError(t, err)

	assert.Equal(t, "hello back", state.AgentResponse)
	assert.Equal(t, domain.AgentGeneral, state.PreviousAgent)

	exchanges, err := historyStore.LoadOrCreate(context.Background(), "w1", domain.AgentGeneral)
	require.NoError(t, err)
	require.Len(t, exchanges, 1)
	assert.Equal(t, "hello", exchanges[0].User)
	assert.Equal(t, "hello back", exchanges[0].Assistant)
}

func TestGeneralAgent_PromptCarriesHistory(t *testing.T) {
	model := &stubModel{content: `{"response": "again"}`}
	historyStore := newTestHistory(t)
	ctx := context.Background()

	require.NoError(t, historyStore.Save(ctx, domain.SaveHistoryParams{
		WorkflowID: "w1",
		Agent:      domain.AgentGeneral,
		Exchanges:  []domain.Exchange{{User: "first turn", Assistant: "first reply"}},
	}))

	agent := NewGeneralAgent(GeneralAgentDependencies{Model: model, History: historyStore})

	_, err := agent.Run(ctx, domain.WorkflowState{
		WorkflowID: "w1",
		UserInput:  &domain.UserInput{Response: "second turn"},
	})
	require.NoError(t, err)

	require.Len(t, model.requests, 1)
	assert.Contains(t, model.requests[0].Prompt, "first turn")
	assert.Contains(t, model.requests[0].Prompt, "second turn")
}

func TestGeneralAgent_ModelFailure(t *testing.T) {
	model := &stubModel{err: errors.New("rate limited")}
	agent := NewGeneralAgent(GeneralAgentDependencies{
		Model:   model,
		History: newTestHistory(t),
	})

	_, err := agent.Run(context.Background(), domain.WorkflowState{
		WorkflowID: "w1",
		UserInput:  &domain.UserInput{Response: "hi"},
	})

	assert.ErrorIs(t, err, domain.ErrAgentFailed)
}

func TestCompanionAgent_Run(t *testing.T) {
	model := &stubModel{content: `{"response": "hey you", "confidence": 90}`}
	historyStore := newTestHistory(t)

	agent := NewCompanionAgent(CompanionAgentDependencies{
		Model:   model,
		History: historyStore,
	})

	state, err := agent.Run(context.Background(), domain.WorkflowState{
		UserID:     "u1",
		WorkflowID: "w1",
		UserInput: &domain.UserInput{
			Response:        "hi",
			CompanionName:   "Ada",
			CompanionGender: "female",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "hey you", state.AgentResponse)
	assert.Equal(t, domain.AgentCompanion, state.PreviousAgent)

	require.Len(t, model.requests, 1)
	assert.Contains(t, model.requests[0].Prompt, "companion_name: Ada")

	exchanges, err := historyStore.LoadOrCreate(context.Background(), "w1", domain.AgentCompanion)
	require.NoError(t, err)
	require.Len(t, exchanges, 1)
	assert.Equal(t, "hey you", exchanges[0].Assistant)
}

func TestConversationAnalyzerAgent_Run(t *testing.T) {
	report := `{
		"session_metadata": {"companion_name": "Ada", "companion_gender": "female", "interaction_type": "support"},
		"intent_analysis": {"primary_intent": "companionship", "secondary_intents": ["venting"], "intent_fulfillment": "high", "evolving_needs": "stability"},
		"emotional_profile": {"initial_state": "anxious", "emotional_journey": ["anxious", "calm"], "final_state": "calm", "emotional_needs": ["reassurance"], "triggers": ["work"]},
		"relationship_dynamics": {"interaction_style": "warm", "trust_indicators": ["self-disclosure"], "companion_performance": "good", "attachment_signals": "moderate"},
		"contextual_insights": {"session_quality": "high", "user_engagement": "steady", "conversation_flow": "natural", "preferred_topics": ["music"], "avoided_topics": []},
		"recommendations": {"companion_improvements": ["slower pacing"], "user_patterns": "evening sessions", "future_session_guidance": "check in about work"}
	}`

	model := &stubModel{content: report}
	historyStore := newTestHistory(t)
	ctx := context.Background()

	require.NoError(t, historyStore.Save(ctx, domain.SaveHistoryParams{
		WorkflowID: "w1",
		Agent:      domain.AgentCompanion,
		Exchanges:  []domain.Exchange{{User: "rough day", Assistant: "tell me about it"}},
	}))

	dir := t.TempDir()
	agent := NewConversationAnalyzerAgent(ConversationAnalyzerDependencies{
		Model:     model,
		History:   historyStore,
		Artifacts: NewArtifactWriter(dir),
	})

	state, err := agent.Run(ctx, domain.WorkflowState{
		UserID:        "u1",
		WorkflowID:    "w1",
		Agent:         domain.AgentConversationAnalyzer,
		PreviousAgent: domain.AgentCompanion,
	})
	require.NoError(t, err)

	assert.Contains(t, state.ConversationAnalyzed, "# Conversation Analysis")
	assert.Contains(t, state.ConversationAnalyzed, "**Companion Name**: Ada")

	// The analyzed history feeds the prompt.
	require.Len(t, model.requests, 1)
	assert.Contains(t, model.requests[0].Prompt, "rough day")

	written, err := os.ReadFile(filepath.Join(dir, "w1.md"))
	require.NoError(t, err)
	assert.Equal(t, state.ConversationAnalyzed, string(written))
}

func TestConversationAnalyzerAgent_RejectsAnalyzerAsSource(t *testing.T) {
	agent := NewConversationAnalyzerAgent(ConversationAnalyzerDependencies{
		Model:     &stubModel{},
		History:   newTestHistory(t),
		Artifacts: NewArtifactWriter(t.TempDir()),
	})

	_, err := agent.Run(context.Background(), domain.WorkflowState{
		WorkflowID:    "w1",
		PreviousAgent: domain.AgentConversationAnalyzer,
	})

	assert.ErrorIs(t, err, domain.ErrUnknownAgentKind)
}

func TestConversationSummarizerAgent_Run(t *testing.T) {
	summary := `{
		"main_intent": "Planning a trip",
		"key_points": ["picked dates", "budget agreed"],
		"summary": "The user planned a spring trip with help narrowing down dates and budget.",
		"message_count": 2,
		"conversation_topics": ["travel", "budgeting"]
	}`

	model := &stubModel{content: summary}
	historyStore := newTestHistory(t)
	ctx := context.Background()

	require.NoError(t, historyStore.Save(ctx, domain.SaveHistoryParams{
		WorkflowID: "w1",
		Agent:      domain.AgentGeneral,
		Exchanges:  []domain.Exchange{{User: "help me plan a trip", Assistant: "when do you want to go?"}},
	}))

	dir := t.TempDir()
	agent := NewConversationSummarizerAgent(ConversationSummarizerDependencies{
		Model:     model,
		History:   historyStore,
		Artifacts: NewArtifactWriter(dir),
	})

	state, err := agent.Run(ctx, domain.WorkflowState{
		UserID:     "u1",
		WorkflowID: "w1",
		Agent:      domain.AgentConversationSummarizer,
	})
	require.NoError(t, err)

	assert.Contains(t, state.ConversationSummary, "# Conversation Summary")
	assert.Contains(t, state.ConversationSummary, "- **Main Intent**: Planning a trip")
	assert.Contains(t, state.ConversationSummary, "- **Message Count**: 2")
	assert.Contains(t, state.ConversationSummary, "  - travel")

	// The general conversation is the default summarization source.
	require.Len(t, model.requests, 1)
	assert.Contains(t, model.requests[0].Prompt, "help me plan a trip")

	written, err := os.ReadFile(filepath.Join(dir, "w1.md"))
	require.NoError(t, err)
	assert.Equal(t, state.ConversationSummary, string(written))
}

func TestConversationSummarizerAgent_SummarizesPreviousAgent(t *testing.T) {
	model := &stubModel{content: `{"main_intent": "Companionship", "key_points": [], "summary": "s", "message_count": 1, "conversation_topics": []}`}
	historyStore := newTestHistory(t)
	ctx := context.Background()

	require.NoError(t, historyStore.Save(ctx, domain.SaveHistoryParams{
		WorkflowID: "w1",
		Agent:      domain.AgentCompanion,
		Exchanges:  []domain.Exchange{{User: "missed you", Assistant: "missed you too"}},
	}))

	agent := NewConversationSummarizerAgent(ConversationSummarizerDependencies{
		Model:     model,
		History:   historyStore,
		Artifacts: NewArtifactWriter(t.TempDir()),
	})

	_, err := agent.Run(ctx, domain.WorkflowState{
		WorkflowID:    "w1",
		PreviousAgent: domain.AgentCompanion,
	})
	require.NoError(t, err)

	require.Len(t, model.requests, 1)
	assert.Contains(t, model.requests[0].Prompt, "missed you")
}

func TestConversationSummarizerAgent_RejectsAnalyzerAsSource(t *testing.T) {
	agent := NewConversationSummarizerAgent(ConversationSummarizerDependencies{
		Model:     &stubModel{},
		History:   newTestHistory(t),
		Artifacts: NewArtifactWriter(t.TempDir()),
	})

	_, err := agent.Run(context.Background(), domain.WorkflowState{
		WorkflowID:    "w1",
		PreviousAgent: domain.AgentConversationSummarizer,
	})

	assert.ErrorIs(t, err, domain.ErrUnknownAgentKind)
}

func TestJournalAnalyzerAgent_Run(t *testing.T) {
	model := &stubModel{content: `{"mood": "hopeful", "category": "goals", "analysis": "Forward-looking entry."}`}

	dir := t.TempDir()
	agent := NewJournalAnalyzerAgent(JournalAnalyzerDependencies{
		Model:     model,
		Artifacts: NewArtifactWriter(dir),
	})

	state, err := agent.Run(context.Background(), domain.WorkflowState{
		WorkflowID: "w1",
		UserInput:  &domain.UserInput{Response: "I want to run a marathon next year."},
	})
	require.NoError(t, err)

	assert.Contains(t, state.JournalAnalysis, "**Mood**: hopeful")
	assert.Contains(t, state.JournalAnalysis, "**Category**: goals")
	assert.Contains(t, state.JournalAnalysis, "Forward-looking entry.")

	_, err = os.Stat(filepath.Join(dir, "w1.md"))
	assert.NoError(t, err)
}

func TestJournalAnalyzerAgent_RejectsInvalidClassification(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid mood", content: `{"mood": "ecstatic", "category": "goals", "analysis": "x"}`},
		{name: "invalid category", content: `{"mood": "happy", "category": "finance", "analysis": "x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent := NewJournalAnalyzerAgent(JournalAnalyzerDependencies{
				Model:     &stubModel{content: tt.content},
				Artifacts: NewArtifactWriter(t.TempDir()),
			})

			_, err := agent.Run(context.Background(), domain.WorkflowState{
				WorkflowID: "w1",
				UserInput:  &domain.UserInput{Response: "entry"},
			})

			assert.ErrorIs(t, err, domain.ErrAgentFailed)
		})
	}
}

func TestFormatConversationReport(t *testing.T) {
	report := ConversationReport{
		SessionMetadata: SessionMetadata{CompanionName: "Ada", CompanionGender: "female", InteractionType: "support"},
		IntentAnalysis:  IntentAnalysis{PrimaryIntent: "companionship", SecondaryIntents: []string{"venting", "advice"}},
	}

	markdown := FormatConversationReport(report)

	assert.True(t, strings.HasPrefix(markdown, "# Conversation Analysis\n"))
	assert.Contains(t, markdown, "## Session Metadata")
	assert.Contains(t, markdown, "- **Primary Intent**: companionship")
	assert.Contains(t, markdown, "- **Secondary Intents**\n  - venting\n  - advice")
	assert.Contains(t, markdown, "## Recommendations")
}

func TestArtifactWriter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	writer := NewArtifactWriter(dir)

	path, err := writer.Write("w1", "# Report\n")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "w1.md"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Report\n", string(content))

	// A rewrite replaces the prior artifact.
	_, err = writer.Write("w1", "# Updated\n")
	require.NoError(t, err)

	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Updated\n", string(content))
}
