package domain

import (
	"context"
	"time"
)

// Session is the registry record for one conversation workflow. It lives
// in the key-value store under the same expiry family as the message
// history it describes, so a session disappearing from the registry means
// its history is gone too.
type Session struct {
	UserID       string    `json:"user_id"`
	WorkflowID   string    `json:"workflow_id"`
	AgentName    AgentKind `json:"agent_name"`
	RegisteredAt time.Time `json:"registered_at"`
	Analyzed     bool      `json:"analyzed"`
	AnalyzedAt   time.Time `json:"analyzed_at,omitzero"`

	// TTLSeconds is the live remaining expiry attached by expiry scans.
	// It is derived from the store, never persisted.
	TTLSeconds int64 `json:"ttl_seconds,omitempty"`
}

// SessionRegistry tracks active conversation sessions so the scheduler can
// find the ones that need analysis before their history expires.
//
// Store failures degrade to conservative defaults (false, nil, empty, 0)
// rather than propagating; a transient outage makes sessions temporarily
// unanalyzable, nothing more.
type SessionRegistry interface {
	// RegisterSession upserts the session record with analyzed=false and a
	// fresh TTL. Re-registering an analyzed session intentionally resets
	// the analyzed flag: a new turn invalidates prior analysis timing.
	RegisterSession(ctx context.Context, userID, workflowID string, agent AgentKind) bool

	// GetSession returns the record, or false if absent or unreadable.
	GetSession(ctx context.Context, workflowID string) (Session, bool)

	// GetSessionsExpiringSoon returns every session whose remaining TTL is
	// in (0, offset], with TTLSeconds populated from the live store probe.
	GetSessionsExpiringSoon(ctx context.Context, offset time.Duration) []Session

	// MarkSessionAnalyzed flips analyzed to true while preserving the
	// record's current remaining TTL. Returns false if the record vanished
	// before the update; callers treat that as an accepted race.
	MarkSessionAnalyzed(ctx context.Context, workflowID string) bool

	IsSessionAnalyzed(ctx context.Context, workflowID string) bool

	// CleanupExpiredSessions counts logically-dead session keys. The store
	// evicts by TTL on its own, so this is best-effort housekeeping.
	CleanupExpiredSessions(ctx context.Context) int
}
