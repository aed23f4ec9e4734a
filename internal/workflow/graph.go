// Package workflow routes state documents to agent nodes and persists
// continuation state per thread.
package workflow

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/havenhq/haven/internal/domain"
)

// Node is one executable agent in the graph.
type Node interface {
	Run(ctx context.Context, state domain.WorkflowState) (domain.WorkflowState, error)
}

// Graph dispatches workflow state to agent nodes on the state's Agent
// field. Every agent kind has a dedicated field; routing is an exhaustive
// switch so an unhandled kind is a compile-visible gap, not a silent
// fallthrough.
type Graph struct {
	general                Node
	companion              Node
	conversationAnalyzer   Node
	conversationSummarizer Node
	journalAnalyzer        Node
	checkpoints            CheckpointStore
}

type GraphDependencies struct {
	General                Node
	Companion              Node
	ConversationAnalyzer   Node
	ConversationSummarizer Node
	JournalAnalyzer        Node

	// Checkpoints is optional. Without it the graph runs stateless, the
	// way the scheduler invokes it.
	Checkpoints CheckpointStore
}

func NewGraph(deps GraphDependencies) (*Graph, error) {
	if deps.General == nil || deps.Companion == nil ||
		deps.ConversationAnalyzer == nil || deps.ConversationSummarizer == nil ||
		deps.JournalAnalyzer == nil {
		return nil, fmt.Errorf("all agent nodes are required")
	}

	checkpoints := deps.Checkpoints
	if checkpoints == nil {
		checkpoints = noopCheckpoints{}
	}

	return &Graph{
		general:                deps.General,
		companion:              deps.Companion,
		conversationAnalyzer:   deps.ConversationAnalyzer,
		conversationSummarizer: deps.ConversationSummarizer,
		journalAnalyzer:        deps.JournalAnalyzer,
		checkpoints:            checkpoints,
	}, nil
}

// Invoke runs one pass of the graph for the state. The returned state is
// the node's output merged over any checkpointed continuation state for
// the thread.
func (g *Graph) Invoke(ctx context.Context, state domain.WorkflowState, cfg domain.InvokeConfig) (*domain.WorkflowState, error) {
	if state.WorkflowID == "" {
		return nil, domain.ErrMissingWorkflowID
	}

	if cfg.ThreadID != "" {
		checkpoint, err := g.checkpoints.Load(ctx, cfg.ThreadID)
		if err != nil {
			log.Warn().Err(err).Str("thread_id", cfg.ThreadID).
				Msg("Failed to load checkpoint, starting from the incoming state")
		} else if checkpoint != nil {
			state = mergeState(*checkpoint, state)
		}
	}

	node, err := g.route(state.Agent)
	if err != nil {
		return nil, err
	}

	result, err := node.Run(ctx, state)
	if err != nil {
		return nil, err
	}

	if cfg.ThreadID != "" {
		if err := g.checkpoints.Save(ctx, cfg.ThreadID, result); err != nil {
			log.Warn().Err(err).Str("thread_id", cfg.ThreadID).Msg("Failed to save checkpoint")
		}
	}

	return &result, nil
}

func (g *Graph) route(agent domain.AgentKind) (Node, error) {
	switch agent {
	case domain.AgentGeneral:
		return g.general, nil
	case domain.AgentCompanion:
		return g.companion, nil
	case domain.AgentConversationAnalyzer:
		return g.conversationAnalyzer, nil
	case domain.AgentConversationSummarizer:
		return g.conversationSummarizer, nil
	case domain.AgentJournalAnalyzer:
		return g.journalAnalyzer, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAgentKind, agent)
	}
}

// mergeState lays the incoming turn over the thread's continuation state.
// Identity fields and the routing target always come from the incoming
// state; conversational fields persist from the checkpoint unless the
// turn replaces them.
func mergeState(checkpoint, incoming domain.WorkflowState) domain.WorkflowState {
	merged := checkpoint

	merged.UserID = incoming.UserID
	merged.WorkflowID = incoming.WorkflowID
	merged.Agent = incoming.Agent
	merged.UserInput = incoming.UserInput
	merged.AgentResponse = ""

	if incoming.PreviousAgent != "" {
		merged.PreviousAgent = incoming.PreviousAgent
	}

	return merged
}
