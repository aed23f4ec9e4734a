package agents

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/havenhq/haven/internal/domain"
	"github.com/havenhq/haven/internal/llm"
)

type companionOutput struct {
	Response string `json:"response"`

	// Confidence is the model's self-reported understanding of the user's
	// input, out of 5.
	Confidence int `json:"confidence"`
}

// CompanionAgent embodies a user-specified persona and keeps rapport
// across turns through its history stream.
type CompanionAgent struct {
	model   llm.Model
	history domain.HistoryStore
}

type CompanionAgentDependencies struct {
	Model   llm.Model
	History domain.HistoryStore
}

func NewCompanionAgent(deps CompanionAgentDependencies) *CompanionAgent {
	return &CompanionAgent{
		model:   deps.Model,
		history: deps.History,
	}
}

func (a *CompanionAgent) Run(ctx context.Context, state domain.WorkflowState) (domain.WorkflowState, error) {
	exchanges, err := a.history.LoadOrCreate(ctx, state.WorkflowID, domain.AgentCompanion)
	if err != nil {
		return state, err
	}

	input := state.UserInput
	if input == nil {
		input = &domain.UserInput{}
	}

	prompt := fmt.Sprintf(`# Conversation History:
%s

# User's Input:
- user_response: %s
- companion_name: %s
- companion_gender: %s`,
		renderExchanges(exchanges), input.Response, input.CompanionName, input.CompanionGender)

	var output companionOutput
	if err := llm.GenerateObject(ctx, a.model, llm.GenerateRequest{
		System: companionPrompt,
		Prompt: prompt,
	}, &output); err != nil {
		return state, fmt.Errorf("%w: %v", domain.ErrAgentFailed, err)
	}

	log.Debug().Int("confidence", output.Confidence).Str("workflow_id", state.WorkflowID).
		Msg("Companion turn generated")

	exchanges = append(exchanges, domain.Exchange{
		User:      input,
		Assistant: output.Response,
	})

	if err := a.history.Save(ctx, domain.SaveHistoryParams{
		WorkflowID: state.WorkflowID,
		Agent:      domain.AgentCompanion,
		Exchanges:  exchanges,
		UserID:     state.UserID,
	}); err != nil {
		return state, err
	}

	state.AgentResponse = output.Response
	state.PreviousAgent = domain.AgentCompanion

	return state, nil
}
