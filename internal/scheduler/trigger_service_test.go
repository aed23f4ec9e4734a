package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenhq/haven/internal/domain"
)

type stubInvoker struct {
	mu      sync.Mutex
	states  []domain.WorkflowState
	configs []domain.InvokeConfig

	failFor   map[string]bool
	err       error
	nilResult bool
	blockCtx  bool
}

func (s *stubInvoker) Invoke(ctx context.Context, state domain.WorkflowState, cfg domain.InvokeConfig) (*domain.WorkflowState, error) {
	s.mu.Lock()
	s.states = append(s.states, state)
	s.configs = append(s.configs, cfg)
	s.mu.Unlock()

	if s.blockCtx {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.nilResult {
		return nil, nil
	}
	if s.failFor[state.WorkflowID] {
		return nil, errors.New("invocation failed")
	}

	out := state
	out.ConversationAnalyzed = "done"
	return &out, nil
}

func (s *stubInvoker) invocations() []domain.WorkflowState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.WorkflowState(nil), s.states...)
}

func newStubTriggerService(invoker *stubInvoker, timeout time.Duration) domain.TriggerService {
	return NewTriggerService(TriggerServiceDependencies{
		InvokerFactory: func() (domain.WorkflowInvoker, error) {
			return invoker, nil
		},
		InvokeTimeout: timeout,
	})
}

func TestTriggerService_UnhealthyWithoutFactory(t *testing.T) {
	service := NewTriggerService(TriggerServiceDependencies{})

	assert.False(t, service.IsHealthy())
	assert.False(t, service.TriggerConversationAnalysis(context.Background(), "u1", "w1", domain.AgentGeneral))
	assert.False(t, service.Reinitialize())
}

func TestTriggerService_RecoversAfterFactoryFailure(t *testing.T) {
	invoker := &stubInvoker{}
	healthy := false

	service := NewTriggerService(TriggerServiceDependencies{
		InvokerFactory: func() (domain.WorkflowInvoker, error) {
			if !healthy {
				return nil, errors.New("provider unavailable")
			}
			return invoker, nil
		},
	})

	assert.False(t, service.IsHealthy())

	healthy = true
	assert.True(t, service.Reinitialize())
	assert.True(t, service.IsHealthy())
}

func TestTriggerService_TriggerConversationAnalysis(t *testing.T) {
	invoker := &stubInvoker{}
	service := newStubTriggerService(invoker, 0)

	ok := service.TriggerConversationAnalysis(context.Background(), "u1", "w1", domain.AgentCompanion)
	require.True(t, ok)

	invocations := invoker.invocations()
	require.Len(t, invocations, 1)
	assert.Equal(t, domain.AgentConversationAnalyzer, invocations[0].Agent)
	assert.Equal(t, domain.AgentCompanion, invocations[0].PreviousAgent)
	assert.Equal(t, "u1", invocations[0].UserID)
	assert.Equal(t, "w1", invoker.configs[0].ThreadID)
}

func TestTriggerService_TriggerValidation(t *testing.T) {
	invoker := &stubInvoker{}
	service := newStubTriggerService(invoker, 0)
	ctx := context.Background()

	assert.False(t, service.TriggerConversationAnalysis(ctx, "", "w1", domain.AgentGeneral))
	assert.False(t, service.TriggerConversationAnalysis(ctx, "u1", "", domain.AgentGeneral))
	assert.False(t, service.TriggerConversationAnalysis(ctx, "u1", "w1", ""))
	assert.Empty(t, invoker.invocations())
}

func TestTriggerService_NilResultIsFailure(t *testing.T) {
	service := newStubTriggerService(&stubInvoker{nilResult: true}, 0)

	assert.False(t, service.TriggerConversationAnalysis(context.Background(), "u1", "w1", domain.AgentGeneral))
}

func TestTriggerService_InvokeTimeout(t *testing.T) {
	service := newStubTriggerService(&stubInvoker{blockCtx: true}, 20*time.Millisecond)

	start := time.Now()
	ok := service.TriggerConversationAnalysis(context.Background(), "u1", "w1", domain.AgentGeneral)
	elapsed := time.Since(start)

	assert.False(t, ok)
	assert.Less(t, elapsed, 5*time.Second)
}

func TestTriggerService_TriggerMultipleAnalyses(t *testing.T) {
	invoker := &stubInvoker{failFor: map[string]bool{"w2": true}}
	service := newStubTriggerService(invoker, 0)

	sessions := []domain.Session{
		{UserID: "u1", WorkflowID: "w1", AgentName: domain.AgentGeneral},
		{UserID: "u2", WorkflowID: "w2", AgentName: domain.AgentGeneral},
		{UserID: "u3", WorkflowID: "w3", AgentName: domain.AgentCompanion},
	}

	results := service.TriggerMultipleAnalyses(context.Background(), sessions)

	require.Len(t, results, 3)
	assert.True(t, results["w1"])
	assert.False(t, results["w2"])
	assert.True(t, results["w3"])
}

func TestTriggerService_TriggerMultipleFiltersIneligible(t *testing.T) {
	invoker := &stubInvoker{}
	service := newStubTriggerService(invoker, 0)

	sessions := []domain.Session{
		{UserID: "u1", WorkflowID: "w1", AgentName: domain.AgentGeneral, Analyzed: true},
		{UserID: "", WorkflowID: "w2", AgentName: domain.AgentGeneral},
		{UserID: "u3", WorkflowID: "w3", AgentName: domain.AgentGeneral},
	}

	results := service.TriggerMultipleAnalyses(context.Background(), sessions)

	require.Len(t, results, 1)
	assert.True(t, results["w3"])
	assert.NotContains(t, results, "w1")
	assert.NotContains(t, results, "w2")
}

type panickingInvoker struct {
	panicFor string
	inner    *stubInvoker
}

func (p *panickingInvoker) Invoke(ctx context.Context, state domain.WorkflowState, cfg domain.InvokeConfig) (*domain.WorkflowState, error) {
	if state.WorkflowID == p.panicFor {
		panic("nil dereference in analyzer node")
	}
	return p.inner.Invoke(ctx, state, cfg)
}

func TestTriggerService_FanOutContainsPanics(t *testing.T) {
	invoker := &panickingInvoker{panicFor: "w2", inner: &stubInvoker{}}

	service := NewTriggerService(TriggerServiceDependencies{
		InvokerFactory: func() (domain.WorkflowInvoker, error) {
			return invoker, nil
		},
	})

	sessions := []domain.Session{
		{UserID: "u1", WorkflowID: "w1", AgentName: domain.AgentGeneral},
		{UserID: "u2", WorkflowID: "w2", AgentName: domain.AgentGeneral},
		{UserID: "u3", WorkflowID: "w3", AgentName: domain.AgentCompanion},
	}

	results := service.TriggerMultipleAnalyses(context.Background(), sessions)

	require.Len(t, results, 3)
	assert.True(t, results["w1"])
	assert.False(t, results["w2"])
	assert.True(t, results["w3"])
}

func TestTriggerService_TriggerMultipleEmpty(t *testing.T) {
	service := newStubTriggerService(&stubInvoker{}, 0)

	results := service.TriggerMultipleAnalyses(context.Background(), nil)
	assert.Empty(t, results)
	assert.NotNil(t, results)
}
