// Package sessions implements the session registry: metadata records that
// let the scheduler find conversations needing analysis before their
// history expires.
package sessions

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/havenhq/haven/internal/domain"
	"github.com/havenhq/haven/internal/storage/kvstore"
)

const sessionKeyPrefix = "session:"

type registry struct {
	store kvstore.Store
	ttl   time.Duration
	now   func() time.Time
}

type RegistryDependencies struct {
	Store kvstore.Store

	// TTL is the fixed message-expiry duration; session records share it.
	TTL time.Duration

	// Now overrides the time source, for tests. Defaults to time.Now.
	Now func() time.Time
}

func NewRegistry(deps RegistryDependencies) domain.SessionRegistry {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &registry{
		store: deps.Store,
		ttl:   deps.TTL,
		now:   now,
	}
}

func sessionKey(workflowID string) string {
	return sessionKeyPrefix + workflowID
}

func (r *registry) RegisterSession(ctx context.Context, userID, workflowID string, agent domain.AgentKind) bool {
	if userID == "" || workflowID == "" || agent == "" {
		log.Error().
			Str("user_id", userID).
			Str("workflow_id", workflowID).
			Str("agent_name", agent.String()).
			Msg("Session registration requires user id, workflow id and agent name")
		return false
	}

	session := domain.Session{
		UserID:       userID,
		WorkflowID:   workflowID,
		AgentName:    agent,
		RegisteredAt: r.now().UTC(),
		Analyzed:     false,
	}

	payload, err := json.Marshal(session)
	if err != nil {
		log.Error().Err(err).Str("workflow_id", workflowID).Msg("Failed to encode session record")
		return false
	}

	if err := r.store.SetWithTTL(ctx, sessionKey(workflowID), string(payload), r.ttl); err != nil {
		log.Error().Err(err).Str("workflow_id", workflowID).Msg("Failed to register session")
		return false
	}

	log.Debug().
		Str("workflow_id", workflowID).
		Str("user_id", userID).
		Str("agent_name", agent.String()).
		Msg("Session registered")

	return true
}

func (r *registry) GetSession(ctx context.Context, workflowID string) (domain.Session, bool) {
	if workflowID == "" {
		log.Error().Msg("Session lookup requires a workflow id")
		return domain.Session{}, false
	}

	payload, found, err := r.store.Get(ctx, sessionKey(workflowID))
	if err != nil {
		log.Error().Err(err).Str("workflow_id", workflowID).Msg("Failed to read session record")
		return domain.Session{}, false
	}
	if !found {
		return domain.Session{}, false
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		log.Error().Err(err).Str("workflow_id", workflowID).Msg("Failed to decode session record")
		return domain.Session{}, false
	}

	return session, true
}

func (r *registry) GetSessionsExpiringSoon(ctx context.Context, offset time.Duration) []domain.Session {
	keys, err := r.store.ScanKeys(ctx, sessionKeyPrefix+"*")
	if err != nil {
		log.Error().Err(err).Msg("Failed to scan session keys")
		return nil
	}

	var expiring []domain.Session

	for _, key := range keys {
		ttl, err := r.store.TTL(ctx, key)
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("Failed to probe session ttl")
			continue
		}

		// Only keys with a live expiry inside the window qualify.
		if !ttl.Exists || !ttl.HasExpiry || ttl.Remaining <= 0 || ttl.Remaining > offset {
			continue
		}

		payload, found, err := r.store.Get(ctx, key)
		if err != nil || !found {
			continue
		}

		var session domain.Session
		if err := json.Unmarshal([]byte(payload), &session); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Skipping session record with invalid payload")
			continue
		}

		session.TTLSeconds = int64(ttl.Remaining / time.Second)
		expiring = append(expiring, session)
	}

	log.Debug().
		Int("count", len(expiring)).
		Dur("offset", offset).
		Msg("Scanned for sessions expiring soon")

	return expiring
}

func (r *registry) MarkSessionAnalyzed(ctx context.Context, workflowID string) bool {
	if workflowID == "" {
		log.Error().Msg("Marking a session analyzed requires a workflow id")
		return false
	}

	key := sessionKey(workflowID)

	payload, found, err := r.store.Get(ctx, key)
	if err != nil {
		log.Error().Err(err).Str("workflow_id", workflowID).Msg("Failed to read session for analyzed mark")
		return false
	}
	if !found {
		log.Warn().Str("workflow_id", workflowID).Msg("Session not found for analyzed mark")
		return false
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		log.Error().Err(err).Str("workflow_id", workflowID).Msg("Failed to decode session for analyzed mark")
		return false
	}

	session.Analyzed = true
	session.AnalyzedAt = r.now().UTC()

	updated, err := json.Marshal(session)
	if err != nil {
		log.Error().Err(err).Str("workflow_id", workflowID).Msg("Failed to encode analyzed session")
		return false
	}

	// Re-read the TTL immediately before the write so the record keeps
	// its current remaining lifetime instead of gaining or losing expiry.
	ttl, err := r.store.TTL(ctx, key)
	if err != nil {
		log.Error().Err(err).Str("workflow_id", workflowID).Msg("Failed to probe ttl for analyzed mark")
		return false
	}

	if ttl.Exists && ttl.HasExpiry && ttl.Remaining > 0 {
		err = r.store.SetWithTTL(ctx, key, string(updated), ttl.Remaining)
	} else {
		err = r.store.Set(ctx, key, string(updated))
	}
	if err != nil {
		log.Error().Err(err).Str("workflow_id", workflowID).Msg("Failed to mark session analyzed")
		return false
	}

	log.Debug().Str("workflow_id", workflowID).Msg("Session marked analyzed")
	return true
}

func (r *registry) IsSessionAnalyzed(ctx context.Context, workflowID string) bool {
	session, found := r.GetSession(ctx, workflowID)
	if !found {
		return false
	}
	return session.Analyzed
}

func (r *registry) CleanupExpiredSessions(ctx context.Context) int {
	keys, err := r.store.ScanKeys(ctx, sessionKeyPrefix+"*")
	if err != nil {
		log.Error().Err(err).Msg("Failed to scan session keys for cleanup")
		return 0
	}

	cleaned := 0
	for _, key := range keys {
		ttl, err := r.store.TTL(ctx, key)
		if err != nil {
			continue
		}
		if !ttl.Exists {
			cleaned++
		}
	}

	log.Debug().Int("count", cleaned).Msg("Session cleanup pass finished")
	return cleaned
}
