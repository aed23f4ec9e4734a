// Package history persists per-agent conversation history blobs with
// sliding expiration.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/havenhq/haven/internal/domain"
	"github.com/havenhq/haven/internal/storage/kvstore"
)

type store struct {
	kv       kvstore.Store
	registry domain.SessionRegistry
	ttl      time.Duration
}

type StoreDependencies struct {
	Store    kvstore.Store
	Registry domain.SessionRegistry

	// TTL is the fixed message-expiry duration, refreshed on every read
	// and every write.
	TTL time.Duration
}

func NewStore(deps StoreDependencies) domain.HistoryStore {
	return &store{
		kv:       deps.Store,
		registry: deps.Registry,
		ttl:      deps.TTL,
	}
}

func messageKey(workflowID string, agent domain.AgentKind) string {
	return fmt.Sprintf("workflow:%s:messages:%s", workflowID, agent)
}

func (s *store) LoadOrCreate(ctx context.Context, workflowID string, agent domain.AgentKind) ([]domain.Exchange, error) {
	if workflowID == "" {
		return nil, domain.ErrMissingWorkflowID
	}
	if agent == "" {
		return nil, domain.ErrMissingAgentKind
	}

	key := messageKey(workflowID, agent)

	payload, found, err := s.kv.Get(ctx, key)
	if err != nil {
		log.Error().Err(err).Str("workflow_id", workflowID).Str("agent_name", agent.String()).
			Msg("Failed to load history, continuing with empty messages")
		return []domain.Exchange{}, nil
	}
	if !found {
		log.Debug().Str("workflow_id", workflowID).Str("agent_name", agent.String()).
			Msg("No stored history, starting fresh")
		return []domain.Exchange{}, nil
	}

	// Sliding expiration: reading keeps active conversations alive.
	if _, err := s.kv.Expire(ctx, key, s.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to refresh history expiry on read")
	}

	var exchanges []domain.Exchange
	if err := json.Unmarshal([]byte(payload), &exchanges); err != nil {
		log.Error().Err(err).Str("workflow_id", workflowID).Msg("Failed to decode history, continuing with empty messages")
		return []domain.Exchange{}, nil
	}

	log.Debug().Int("count", len(exchanges)).Str("workflow_id", workflowID).Str("agent_name", agent.String()).
		Msg("Loaded history")

	return exchanges, nil
}

func (s *store) Save(ctx context.Context, params domain.SaveHistoryParams) error {
	if params.WorkflowID == "" {
		return domain.ErrMissingWorkflowID
	}
	if params.Agent == "" {
		return domain.ErrMissingAgentKind
	}

	exchanges := params.Exchanges
	if exchanges == nil {
		exchanges = []domain.Exchange{}
	}

	payload, err := json.Marshal(exchanges)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	key := messageKey(params.WorkflowID, params.Agent)

	// A store outage degrades like a read failure does: logged, the turn
	// proceeds without durable history. The session stays unregistered so
	// the expiry scan never points at history that was not written.
	if err := s.kv.SetWithTTL(ctx, key, string(payload), s.ttl); err != nil {
		log.Error().Err(err).Str("workflow_id", params.WorkflowID).Str("agent_name", params.Agent.String()).
			Msg("Failed to save history, continuing without persisting")
		return nil
	}

	log.Debug().Int("count", len(exchanges)).Str("workflow_id", params.WorkflowID).
		Str("agent_name", params.Agent.String()).Msg("Saved history")

	// The analyzer reading and re-saving a history must not re-register
	// the session, or every analysis pass would make the session eligible
	// for yet another one.
	if params.UserID != "" && params.Agent != domain.AgentConversationAnalyzer {
		s.registry.RegisterSession(ctx, params.UserID, params.WorkflowID, params.Agent)
	}

	return nil
}
