// Package agents contains the conversational agents: general chat, the
// persona companion, and the two analyzers that turn finished sessions
// into reports.
package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/havenhq/haven/internal/domain"
	"github.com/havenhq/haven/internal/llm"
)

type generalOutput struct {
	Response string `json:"response"`
}

// GeneralAgent is the plain helpful-assistant chat agent.
type GeneralAgent struct {
	model   llm.Model
	history domain.HistoryStore
}

type GeneralAgentDependencies struct {
	Model   llm.Model
	History domain.HistoryStore
}

func NewGeneralAgent(deps GeneralAgentDependencies) *GeneralAgent {
	return &GeneralAgent{
		model:   deps.Model,
		history: deps.History,
	}
}

func (a *GeneralAgent) Run(ctx context.Context, state domain.WorkflowState) (domain.WorkflowState, error) {
	exchanges, err := a.history.LoadOrCreate(ctx, state.WorkflowID, domain.AgentGeneral)
	if err != nil {
		return state, err
	}

	userInput := ""
	if state.UserInput != nil {
		userInput = state.UserInput.Response
	}

	prompt := fmt.Sprintf("Conversation so far:\n%s\n\nUser: %s", renderExchanges(exchanges), userInput)

	var output generalOutput
	if err := llm.GenerateObject(ctx, a.model, llm.GenerateRequest{
		System: generalPrompt,
		Prompt: prompt,
	}, &output); err != nil {
		return state, fmt.Errorf("%w: %v", domain.ErrAgentFailed, err)
	}

	exchanges = append(exchanges, domain.Exchange{
		User:      userInput,
		Assistant: output.Response,
	})

	if err := a.history.Save(ctx, domain.SaveHistoryParams{
		WorkflowID: state.WorkflowID,
		Agent:      domain.AgentGeneral,
		Exchanges:  exchanges,
		UserID:     state.UserID,
	}); err != nil {
		return state, err
	}

	state.AgentResponse = output.Response
	state.PreviousAgent = domain.AgentGeneral

	return state, nil
}

// renderExchanges flattens history into the prompt. JSON keeps the
// user/assistant pairing unambiguous for the model.
func renderExchanges(exchanges []domain.Exchange) string {
	if len(exchanges) == 0 {
		return "(no prior messages)"
	}

	rendered, err := json.MarshalIndent(exchanges, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", exchanges)
	}

	return string(rendered)
}
