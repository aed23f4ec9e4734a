package scheduler

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// ServiceManager wraps the scheduler with an idempotent started/stopped
// lifecycle for the daemon and its health poller.
type ServiceManager struct {
	scheduler *Scheduler

	mu      sync.Mutex
	started bool
}

type ServiceManagerDependencies struct {
	Scheduler *Scheduler
}

func NewServiceManager(deps ServiceManagerDependencies) *ServiceManager {
	return &ServiceManager{
		scheduler: deps.Scheduler,
	}
}

func (m *ServiceManager) Start() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		log.Warn().Msg("Scheduler service already started")
		return true
	}

	log.Info().Msg("Starting conversation analyzer scheduler service")

	m.scheduler.Start()
	m.started = true

	log.Info().Msg("Conversation analyzer scheduler service started")
	return true
}

func (m *ServiceManager) Stop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		log.Warn().Msg("Scheduler service not started")
		return true
	}

	log.Info().Msg("Stopping conversation analyzer scheduler service")

	m.scheduler.Stop()
	m.started = false

	log.Info().Msg("Conversation analyzer scheduler service stopped")
	return true
}

func (m *ServiceManager) Status() Status {
	return m.scheduler.Status()
}

func (m *ServiceManager) RunManualCheck(ctx context.Context) CheckResult {
	return m.scheduler.RunManualCheck(ctx)
}

func (m *ServiceManager) CleanupExpiredSessions(ctx context.Context) int {
	return m.scheduler.CleanupExpiredSessions(ctx)
}
