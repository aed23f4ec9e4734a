package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenhq/haven/internal/domain"
)

type recordingNode struct {
	name   string
	ran    []domain.WorkflowState
	err    error
	mutate func(state *domain.WorkflowState)
}

func (n *recordingNode) Run(ctx context.Context, state domain.WorkflowState) (domain.WorkflowState, error) {
	n.ran = append(n.ran, state)

	if n.err != nil {
		return state, n.err
	}

	state.AgentResponse = n.name
	if n.mutate != nil {
		n.mutate(&state)
	}
	return state, nil
}

type memoryCheckpoints struct {
	states map[string]domain.WorkflowState
}

func newMemoryCheckpoints() *memoryCheckpoints {
	return &memoryCheckpoints{states: map[string]domain.WorkflowState{}}
}

func (m *memoryCheckpoints) Load(ctx context.Context, threadID string) (*domain.WorkflowState, error) {
	state, ok := m.states[threadID]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (m *memoryCheckpoints) Save(ctx context.Context, threadID string, state domain.WorkflowState) error {
	m.states[threadID] = state
	return nil
}

func newTestGraph(t *testing.T, checkpoints CheckpointStore) (*Graph, map[domain.AgentKind]*recordingNode) {
	t.Helper()

	nodes := map[domain.AgentKind]*recordingNode{
		domain.AgentGeneral:                {name: "general"},
		domain.AgentCompanion:              {name: "companion"},
		domain.AgentConversationAnalyzer:   {name: "conversation"},
		domain.AgentConversationSummarizer: {name: "summarizer"},
		domain.AgentJournalAnalyzer:        {name: "journal"},
	}

	graph, err := NewGraph(GraphDependencies{
		General:                nodes[domain.AgentGeneral],
		Companion:              nodes[domain.AgentCompanion],
		ConversationAnalyzer:   nodes[domain.AgentConversationAnalyzer],
		ConversationSummarizer: nodes[domain.AgentConversationSummarizer],
		JournalAnalyzer:        nodes[domain.AgentJournalAnalyzer],
		Checkpoints:            checkpoints,
	})
	require.NoError(t, err)

	return graph, nodes
}

func TestNewGraph_RequiresAllNodes(t *testing.T) {
	_, err := NewGraph(GraphDependencies{General: &recordingNode{}})
	assert.Error(t, err)
}

func TestGraph_RoutesByAgent(t *testing.T) {
	graph, nodes := newTestGraph(t, nil)
	ctx := context.Background()

	for _, agent := range []domain.AgentKind{
		domain.AgentGeneral,
		domain.AgentCompanion,
		domain.AgentConversationAnalyzer,
		domain.AgentConversationSummarizer,
		domain.AgentJournalAnalyzer,
	} {
		result, err := graph.Invoke(ctx, domain.WorkflowState{
			WorkflowID: "w1",
			Agent:      agent,
		}, domain.InvokeConfig{})
		require.NoError(t, err)
		assert.Equal(t, nodes[agent].name, result.AgentResponse)
	}

	for _, node := range nodes {
		assert.Len(t, node.ran, 1)
	}
}

func TestGraph_UnknownAgent(t *testing.T) {
	graph, _ := newTestGraph(t, nil)

	_, err := graph.Invoke(context.Background(), domain.WorkflowState{
		WorkflowID: "w1",
		Agent:      "mystery_agent",
	}, domain.InvokeConfig{})

	assert.ErrorIs(t, err, domain.ErrUnknownAgentKind)
}

func TestGraph_MissingWorkflowID(t *testing.T) {
	graph, _ := newTestGraph(t, nil)

	_, err := graph.Invoke(context.Background(), domain.WorkflowState{
		Agent: domain.AgentGeneral,
	}, domain.InvokeConfig{})

	assert.ErrorIs(t, err, domain.ErrMissingWorkflowID)
}

func TestGraph_NodeErrorPropagates(t *testing.T) {
	graph, nodes := newTestGraph(t, nil)
	nodes[domain.AgentGeneral].err = errors.New("model unavailable")

	_, err := graph.Invoke(context.Background(), domain.WorkflowState{
		WorkflowID: "w1",
		Agent:      domain.AgentGeneral,
	}, domain.InvokeConfig{})

	assert.Error(t, err)
}

func TestGraph_CheckpointPersistsAcrossInvocations(t *testing.T) {
	checkpoints := newMemoryCheckpoints()
	graph, nodes := newTestGraph(t, checkpoints)
	ctx := context.Background()

	nodes[domain.AgentGeneral].mutate = func(state *domain.WorkflowState) {
		state.PreviousAgent = domain.AgentGeneral
	}

	first, err := graph.Invoke(ctx, domain.WorkflowState{
		UserID:     "u1",
		WorkflowID: "w1",
		Agent:      domain.AgentGeneral,
		UserInput:  &domain.UserInput{Response: "hello"},
	}, domain.InvokeConfig{ThreadID: "w1"})
	require.NoError(t, err)
	assert.Equal(t, domain.AgentGeneral, first.PreviousAgent)

	// The analyzer turn carries no PreviousAgent of its own; the merge
	// keeps the one from the checkpointed turn.
	second, err := graph.Invoke(ctx, domain.WorkflowState{
		UserID:     "u1",
		WorkflowID: "w1",
		Agent:      domain.AgentConversationAnalyzer,
	}, domain.InvokeConfig{ThreadID: "w1"})
	require.NoError(t, err)

	analyzerRuns := nodes[domain.AgentConversationAnalyzer].ran
	require.Len(t, analyzerRuns, 1)
	assert.Equal(t, domain.AgentGeneral, analyzerRuns[0].PreviousAgent)
	assert.Equal(t, "conversation", second.AgentResponse)
}

func TestGraph_IncomingTurnOverridesCheckpoint(t *testing.T) {
	checkpoints := newMemoryCheckpoints()
	graph, nodes := newTestGraph(t, checkpoints)
	ctx := context.Background()

	_, err := graph.Invoke(ctx, domain.WorkflowState{
		UserID:     "u1",
		WorkflowID: "w1",
		Agent:      domain.AgentGeneral,
		UserInput:  &domain.UserInput{Response: "first"},
	}, domain.InvokeConfig{ThreadID: "w1"})
	require.NoError(t, err)

	_, err = graph.Invoke(ctx, domain.WorkflowState{
		UserID:     "u1",
		WorkflowID: "w1",
		Agent:      domain.AgentGeneral,
		UserInput:  &domain.UserInput{Response: "second"},
	}, domain.InvokeConfig{ThreadID: "w1"})
	require.NoError(t, err)

	runs := nodes[domain.AgentGeneral].ran
	require.Len(t, runs, 2)
	assert.Equal(t, "second", runs[1].UserInput.Response)
	// The previous turn's response never leaks into the next turn's input.
	assert.Empty(t, runs[1].AgentResponse)
}

func TestGraph_StatelessWithoutThreadID(t *testing.T) {
	checkpoints := newMemoryCheckpoints()
	graph, _ := newTestGraph(t, checkpoints)

	_, err := graph.Invoke(context.Background(), domain.WorkflowState{
		WorkflowID: "w1",
		Agent:      domain.AgentGeneral,
	}, domain.InvokeConfig{})
	require.NoError(t, err)

	assert.Empty(t, checkpoints.states)
}
