package domain

import "context"

// TriggerService invokes the conversation analyzer workflow for sessions
// that are about to expire. Invocation failures are converted to false,
// never propagated: the scheduler retries by omission on a later tick.
type TriggerService interface {
	// TriggerConversationAnalysis runs the analyzer for one session and
	// reports whether the invocation produced a result.
	TriggerConversationAnalysis(ctx context.Context, userID, workflowID string, agent AgentKind) bool

	// TriggerMultipleAnalyses fans out over the given sessions
	// concurrently. Sessions missing required fields or already analyzed
	// are omitted from the result map entirely. One session's failure
	// never affects a sibling's outcome.
	TriggerMultipleAnalyses(ctx context.Context, sessions []Session) map[string]bool

	// IsHealthy reports whether the workflow invoker is constructed.
	IsHealthy() bool

	// Reinitialize rebuilds the invoker after an outage and reports the
	// resulting health.
	Reinitialize() bool
}
