// Package scheduler contains the session-expiry-driven scheduling
// subsystem: the trigger service that fans analysis invocations out over
// expiring sessions, the recurring scheduler that drives it, and the
// service manager wrapping the scheduler's lifecycle.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/havenhq/haven/internal/domain"
)

type triggerService struct {
	factory domain.WorkflowInvokerFactory
	timeout time.Duration

	mu      sync.RWMutex
	invoker domain.WorkflowInvoker
}

type TriggerServiceDependencies struct {
	// InvokerFactory builds the workflow invoker lazily. A nil factory
	// leaves the service unhealthy; triggers fail fast instead of
	// panicking.
	InvokerFactory domain.WorkflowInvokerFactory

	// InvokeTimeout bounds each analysis invocation so one hung call
	// cannot stall a scheduler cycle indefinitely. Zero disables the
	// bound.
	InvokeTimeout time.Duration
}

func NewTriggerService(deps TriggerServiceDependencies) domain.TriggerService {
	service := &triggerService{
		factory: deps.InvokerFactory,
		timeout: deps.InvokeTimeout,
	}

	service.initialize()

	return service
}

func (s *triggerService) initialize() {
	if s.factory == nil {
		log.Warn().Msg("No workflow invoker factory provided, trigger service will report unhealthy")
		return
	}

	invoker, err := s.factory()
	if err != nil {
		log.Error().Err(err).Msg("Failed to construct workflow invoker")
		return
	}

	s.mu.Lock()
	s.invoker = invoker
	s.mu.Unlock()

	log.Info().Msg("Workflow invoker initialized")
}

func (s *triggerService) currentInvoker() domain.WorkflowInvoker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.invoker
}

func (s *triggerService) TriggerConversationAnalysis(ctx context.Context, userID, workflowID string, agent domain.AgentKind) bool {
	invoker := s.currentInvoker()
	if invoker == nil {
		log.Error().Msg("Workflow invoker not initialized, cannot trigger analysis")
		return false
	}

	if userID == "" || workflowID == "" || agent == "" {
		log.Error().
			Str("user_id", userID).
			Str("workflow_id", workflowID).
			Str("agent_name", agent.String()).
			Msg("Triggering analysis requires user id, workflow id and agent name")
		return false
	}

	state := domain.WorkflowState{
		UserID:        userID,
		WorkflowID:    workflowID,
		Agent:         domain.AgentConversationAnalyzer,
		PreviousAgent: agent,
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	log.Info().
		Str("workflow_id", workflowID).
		Str("user_id", userID).
		Str("previous_agent", agent.String()).
		Msg("Triggering conversation analysis")

	result, err := invoker.Invoke(ctx, state, domain.InvokeConfig{ThreadID: workflowID})
	if err != nil {
		log.Error().Err(err).Str("workflow_id", workflowID).Msg("Conversation analysis failed")
		return false
	}
	if result == nil {
		log.Warn().Str("workflow_id", workflowID).Msg("Conversation analysis returned an empty result")
		return false
	}

	log.Info().Str("workflow_id", workflowID).Msg("Conversation analysis completed")
	return true
}

// triggerOutcome is the explicit per-session result joined at the fan-out
// barrier; failures travel as values, not panics.
type triggerOutcome struct {
	workflowID string
	ok         bool
}

func (s *triggerService) TriggerMultipleAnalyses(ctx context.Context, sessions []domain.Session) map[string]bool {
	if len(sessions) == 0 {
		log.Debug().Msg("No sessions to analyze")
		return map[string]bool{}
	}

	var eligible []domain.Session

	for _, session := range sessions {
		if session.UserID == "" || session.WorkflowID == "" || session.AgentName == "" {
			log.Warn().Str("workflow_id", session.WorkflowID).Msg("Skipping session with missing fields")
			continue
		}
		if session.Analyzed {
			log.Debug().Str("workflow_id", session.WorkflowID).Msg("Skipping already analyzed session")
			continue
		}
		eligible = append(eligible, session)
	}

	if len(eligible) == 0 {
		log.Info().Msg("No eligible sessions to analyze")
		return map[string]bool{}
	}

	log.Info().Int("count", len(eligible)).Msg("Triggering analysis for sessions")

	outcomes := make(chan triggerOutcome, len(eligible))

	var wg sync.WaitGroup
	for _, session := range eligible {
		wg.Add(1)
		go func(session domain.Session) {
			defer wg.Done()

			ok := false
			// A panicking invoker node costs its own session a false
			// outcome, never a sibling's and never the process.
			defer func() {
				if r := recover(); r != nil {
					log.Error().Interface("panic", r).Str("workflow_id", session.WorkflowID).
						Msg("Analysis invocation panicked")
				}
				outcomes <- triggerOutcome{workflowID: session.WorkflowID, ok: ok}
			}()

			ok = s.TriggerConversationAnalysis(ctx, session.UserID, session.WorkflowID, session.AgentName)
		}(session)
	}

	wg.Wait()
	close(outcomes)

	results := make(map[string]bool, len(eligible))
	succeeded := 0
	for outcome := range outcomes {
		results[outcome.workflowID] = outcome.ok
		if outcome.ok {
			succeeded++
		}
	}

	log.Info().
		Int("succeeded", succeeded).
		Int("total", len(results)).
		Msg("Completed analysis fan-out")

	return results
}

func (s *triggerService) IsHealthy() bool {
	return s.currentInvoker() != nil
}

func (s *triggerService) Reinitialize() bool {
	log.Info().Msg("Reinitializing trigger service")
	s.initialize()
	return s.IsHealthy()
}
