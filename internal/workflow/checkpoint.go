package workflow

import (
	"context"

	"github.com/havenhq/haven/internal/domain"
)

// CheckpointStore persists per-thread continuation state so repeated
// invocations for the same conversation share context.
type CheckpointStore interface {
	// Load returns the thread's last state, or nil when none exists.
	Load(ctx context.Context, threadID string) (*domain.WorkflowState, error)

	Save(ctx context.Context, threadID string, state domain.WorkflowState) error
}

// noopCheckpoints backs stateless graphs, such as the one the scheduler
// uses for background analysis.
type noopCheckpoints struct{}

func (noopCheckpoints) Load(ctx context.Context, threadID string) (*domain.WorkflowState, error) {
	return nil, nil
}

func (noopCheckpoints) Save(ctx context.Context, threadID string, state domain.WorkflowState) error {
	return nil
}
