package domain

import "context"

// UserInput is the structured payload an interactive turn carries into the
// graph. Companion sessions add the persona fields.
type UserInput struct {
	Response        string `json:"response"`
	CompanionName   string `json:"companion_name,omitempty"`
	CompanionGender string `json:"companion_gender,omitempty"`
}

// WorkflowState is the state document routed through the workflow graph.
// Agent selects the node to run; PreviousAgent tells analyzer nodes whose
// history to read.
type WorkflowState struct {
	UserID        string     `json:"user_id"`
	WorkflowID    string     `json:"workflow_id"`
	Agent         AgentKind  `json:"agent_name"`
	PreviousAgent AgentKind  `json:"previous_agent,omitempty"`
	UserInput     *UserInput `json:"user_input,omitempty"`
	AgentResponse string     `json:"agent_response,omitempty"`

	// Analysis artifacts produced by analyzer nodes, rendered as markdown.
	ConversationAnalyzed string `json:"conversation_analyzed,omitempty"`
	ConversationSummary  string `json:"conversation_summary,omitempty"`
	JournalAnalysis      string `json:"journal_analysis,omitempty"`
}

// InvokeConfig carries per-invocation routing. Invocations sharing a
// ThreadID share continuation state when the invoker checkpoints.
type InvokeConfig struct {
	ThreadID string
}

// WorkflowInvoker runs one pass of the workflow graph. A nil result with a
// nil error means the graph had nothing to do for the state.
type WorkflowInvoker interface {
	Invoke(ctx context.Context, state WorkflowState, cfg InvokeConfig) (*WorkflowState, error)
}

// WorkflowInvokerFactory builds the invoker lazily so consumers can
// construct it after their own wiring is complete, and rebuild it after an
// external dependency outage.
type WorkflowInvokerFactory func() (WorkflowInvoker, error)
