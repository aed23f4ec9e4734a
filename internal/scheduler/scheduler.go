package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"github.com/havenhq/haven/internal/domain"
)

// CheckResult summarizes one scan-and-trigger cycle.
type CheckResult struct {
	Duration         time.Duration   `json:"duration"`
	TotalExpiring    int             `json:"total_expiring_sessions"`
	SessionsTargeted int             `json:"sessions_targeted"`
	Results          map[string]bool `json:"results"`
	Succeeded        int             `json:"succeeded"`
	Failed           int             `json:"failed"`
}

// Status reports the scheduler's current lifecycle state and pacing.
type Status struct {
	Running        bool          `json:"running"`
	Interval       time.Duration `json:"interval"`
	Offset         time.Duration `json:"offset"`
	NextRun        time.Time     `json:"next_run,omitzero"`
	TriggerHealthy bool          `json:"trigger_healthy"`
}

// Scheduler periodically scans the registry for sessions nearing expiry
// and hands them to the trigger service. At most one cycle runs at a
// time: the cycle executes inline in the timer goroutine, so a slow cycle
// coalesces late ticks instead of stacking them.
type Scheduler struct {
	registry domain.SessionRegistry
	trigger  domain.TriggerService
	interval time.Duration
	offset   time.Duration

	mu      sync.Mutex
	running bool
	nextRun time.Time
	stop    chan struct{}
	done    chan struct{}
}

type SchedulerDependencies struct {
	Registry domain.SessionRegistry
	Trigger  domain.TriggerService

	// Interval is the tick pacing. Ticks stay interval-paced regardless
	// of failures; the fixed interval is the implicit rate limit.
	Interval time.Duration

	// Offset is how far ahead of expiry sessions become eligible.
	Offset time.Duration
}

func NewScheduler(deps SchedulerDependencies) *Scheduler {
	return &Scheduler{
		registry: deps.Registry,
		trigger:  deps.Trigger,
		interval: deps.Interval,
		offset:   deps.Offset,
	}
}

// Start begins the recurring scan. Starting a running scheduler is a
// no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		log.Warn().Msg("Scheduler is already running")
		return
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.running = true
	s.nextRun = time.Now().Add(s.interval)

	go s.loop(s.stop, s.done)

	log.Info().
		Dur("interval", s.interval).
		Dur("offset", s.offset).
		Msg("Scheduler started")
}

// Stop halts the timer and waits for any in-flight cycle to finish.
// Stopping a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()

	if !s.running {
		s.mu.Unlock()
		log.Warn().Msg("Scheduler is not running")
		return
	}

	stop, done := s.stop, s.done
	s.running = false
	s.nextRun = time.Time{}
	s.mu.Unlock()

	close(stop)
	<-done

	log.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.nextRun = time.Now().Add(s.interval)
			s.mu.Unlock()

			s.tick()
		}
	}
}

// tick shields the timer loop from a panicking cycle; the next tick
// proceeds independently.
func (s *Scheduler) tick() {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Scheduler cycle panicked")
		}
	}()

	s.runCycle(context.Background())
}

// runCycle is one scan-and-trigger pass. Every failure inside it is
// contained; the next tick retries from scratch.
func (s *Scheduler) runCycle(ctx context.Context) CheckResult {
	cycleID := xid.New().String()
	start := time.Now()

	logger := log.With().Str("cycle_id", cycleID).Logger()

	expiring := s.registry.GetSessionsExpiringSoon(ctx, s.offset)

	result := CheckResult{
		TotalExpiring: len(expiring),
		Results:       map[string]bool{},
	}

	if len(expiring) == 0 {
		logger.Debug().Msg("No sessions expiring soon")
		result.Duration = time.Since(start)
		return result
	}

	logger.Info().Int("count", len(expiring)).Dur("offset", s.offset).
		Msg("Found sessions expiring soon")

	var pending []domain.Session
	for _, session := range expiring {
		if session.Analyzed {
			continue
		}
		pending = append(pending, session)
	}

	result.SessionsTargeted = len(pending)

	if len(pending) == 0 {
		logger.Info().Msg("All expiring sessions are already analyzed")
		result.Duration = time.Since(start)
		return result
	}

	result.Results = s.trigger.TriggerMultipleAnalyses(ctx, pending)

	var failed []string
	for workflowID, ok := range result.Results {
		if !ok {
			result.Failed++
			failed = append(failed, workflowID)
			continue
		}

		result.Succeeded++

		// A failed mark is only logged: the session stays unanalyzed and
		// is retried on a future tick while it remains in the window.
		if !s.registry.MarkSessionAnalyzed(ctx, workflowID) {
			logger.Warn().Str("workflow_id", workflowID).Msg("Failed to mark session analyzed")
		}
	}

	result.Duration = time.Since(start)

	logger.Info().
		Dur("duration", result.Duration).
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Msg("Expiring sessions check completed")

	if len(failed) > 0 {
		logger.Warn().Strs("workflow_ids", failed).Msg("Analyses failed for sessions")
	}

	return result
}

// RunManualCheck executes one cycle synchronously for diagnostics,
// outside the periodic pacing.
func (s *Scheduler) RunManualCheck(ctx context.Context) CheckResult {
	log.Info().Msg("Running manual expiring sessions check")
	return s.runCycle(ctx)
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		Running:        s.running,
		Interval:       s.interval,
		Offset:         s.offset,
		NextRun:        s.nextRun,
		TriggerHealthy: s.trigger.IsHealthy(),
	}
}

// CleanupExpiredSessions forwards the registry's maintenance scan.
func (s *Scheduler) CleanupExpiredSessions(ctx context.Context) int {
	return s.registry.CleanupExpiredSessions(ctx)
}
