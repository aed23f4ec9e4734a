package domain

import "fmt"

// AgentKind identifies a conversational handler that owns a history stream.
type AgentKind string

const (
	AgentGeneral                AgentKind = "general_agent"
	AgentCompanion              AgentKind = "companion_agent"
	AgentConversationAnalyzer   AgentKind = "conversation_analyzer_agent"
	AgentConversationSummarizer AgentKind = "summarize_conversation"
	AgentJournalAnalyzer        AgentKind = "journal_analyzer_agent"
)

// ParseAgentKind validates a raw agent name coming from configuration,
// stored session records or workflow state.
func ParseAgentKind(name string) (AgentKind, error) {
	switch kind := AgentKind(name); kind {
	case AgentGeneral, AgentCompanion, AgentConversationAnalyzer,
		AgentConversationSummarizer, AgentJournalAnalyzer:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAgentKind, name)
	}
}

func (k AgentKind) String() string {
	return string(k)
}

// OwnsHistory reports whether the agent kind writes a conversational
// history stream of its own. Analyzer agents only read the histories of
// other agents.
func (k AgentKind) OwnsHistory() bool {
	switch k {
	case AgentGeneral, AgentCompanion:
		return true
	case AgentConversationAnalyzer, AgentConversationSummarizer, AgentJournalAnalyzer:
		return false
	default:
		return false
	}
}
