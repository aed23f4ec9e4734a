package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/havenhq/haven/internal/domain"
	"github.com/havenhq/haven/internal/llm"
)

// ConversationSummary is the structured output of a conversation
// summarization pass, produced before a conversation is archived.
type ConversationSummary struct {
	MainIntent         string   `json:"main_intent"`
	KeyPoints          []string `json:"key_points"`
	Summary            string   `json:"summary"`
	MessageCount       int      `json:"message_count"`
	ConversationTopics []string `json:"conversation_topics"`
}

// ConversationSummarizerAgent condenses a finished conversation into a
// structured summary artifact.
type ConversationSummarizerAgent struct {
	model     llm.Model
	history   domain.HistoryStore
	artifacts *ArtifactWriter
}

type ConversationSummarizerDependencies struct {
	Model     llm.Model
	History   domain.HistoryStore
	Artifacts *ArtifactWriter
}

func NewConversationSummarizerAgent(deps ConversationSummarizerDependencies) *ConversationSummarizerAgent {
	return &ConversationSummarizerAgent{
		model:     deps.Model,
		history:   deps.History,
		artifacts: deps.Artifacts,
	}
}

func (a *ConversationSummarizerAgent) Run(ctx context.Context, state domain.WorkflowState) (domain.WorkflowState, error) {
	// Without an explicit previous agent the general conversation is the
	// one being archived.
	source := domain.AgentGeneral
	if state.PreviousAgent != "" {
		resolved, err := historySource(state.PreviousAgent)
		if err != nil {
			return state, err
		}
		source = resolved
	}

	exchanges, err := a.history.LoadOrCreate(ctx, state.WorkflowID, source)
	if err != nil {
		return state, err
	}

	prompt := fmt.Sprintf("Conversation History:\n%s\n\nSummarize the conversation intents.", renderExchanges(exchanges))

	var summary ConversationSummary
	if err := llm.GenerateObject(ctx, a.model, llm.GenerateRequest{
		System: conversationSummarizerPrompt,
		Prompt: prompt,
	}, &summary); err != nil {
		return state, fmt.Errorf("%w: %v", domain.ErrAgentFailed, err)
	}

	markdown := FormatConversationSummary(summary)

	path, err := a.artifacts.Write(state.WorkflowID, markdown)
	if err != nil {
		return state, err
	}

	log.Info().Str("workflow_id", state.WorkflowID).Str("path", path).
		Int("message_count", summary.MessageCount).Msg("Conversation summary completed")

	state.ConversationSummary = markdown
	return state, nil
}

// FormatConversationSummary renders the summary as the markdown document
// written to the artifact directory.
func FormatConversationSummary(summary ConversationSummary) string {
	sections := []string{
		"# Conversation Summary",
		fmt.Sprintf("- **Main Intent**: %s", summary.MainIntent),
		formatListSection("Key Points", summary.KeyPoints),
		fmt.Sprintf("- **Message Count**: %d", summary.MessageCount),
		formatListSection("Conversation Topics", summary.ConversationTopics),
		"\n## Summary",
		summary.Summary,
	}
	return strings.Join(sections, "\n") + "\n"
}
