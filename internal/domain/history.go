package domain

import "context"

// Exchange is one completed agent turn: the user's input paired with the
// assistant's reply. Insertion order is chronological order.
type Exchange struct {
	User      any    `json:"user"`
	Assistant string `json:"assistant"`
}

// SaveHistoryParams carries one history write.
type SaveHistoryParams struct {
	WorkflowID string
	Agent      AgentKind
	Exchanges  []Exchange

	// UserID, when present, causes the session to be registered (or
	// refreshed) in the registry as a side effect of the write. Analyzer
	// writes never register, or the analyzer would keep making its own
	// sessions eligible for re-analysis.
	UserID string
}

// HistoryStore persists per-(workflow, agent) message history with sliding
// expiration: both reads and writes reset the TTL so active conversations
// never expire mid-use.
type HistoryStore interface {
	// LoadOrCreate returns the stored exchanges, or an empty slice when
	// none exist. It only errors on an empty workflow id.
	LoadOrCreate(ctx context.Context, workflowID string, agent AgentKind) ([]Exchange, error)

	// Save writes the full exchange list with a fresh TTL and registers
	// the session when the params allow it. Store failures are logged and
	// degraded, not returned; only validation errors error.
	Save(ctx context.Context, params SaveHistoryParams) error
}
