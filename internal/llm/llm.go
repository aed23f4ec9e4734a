// Package llm defines the language-model surface the agents are written
// against, with providers for Anthropic, OpenAI and Gemini.
package llm

import (
	"context"
	"errors"
)

var ErrEmptyResponse = errors.New("model returned an empty response")

// Model is the blocking generation interface all providers implement.
type Model interface {
	Generate(ctx context.Context, req GenerateRequest) (*Response, error)

	// ID returns the provider-qualified model identifier.
	ID() string
}

// GenerateRequest contains the parameters for one generation.
type GenerateRequest struct {
	// System is the agent's system prompt.
	System string `json:"system,omitempty"`

	// Prompt is the composed user turn.
	Prompt string `json:"prompt"`

	// Temperature controls randomness.
	Temperature float32 `json:"temperature,omitempty"`

	// MaxTokens caps the generation length.
	MaxTokens int `json:"max_tokens,omitempty"`

	// JSONOutput asks the provider for a JSON object response where the
	// provider supports enforcing it.
	JSONOutput bool `json:"json_output,omitempty"`
}

// Response is one completed generation.
type Response struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        Usage  `json:"usage"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (u Usage) Add(other Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens + other.PromptTokens,
		CompletionTokens: u.CompletionTokens + other.CompletionTokens,
		TotalTokens:      u.TotalTokens + other.TotalTokens,
	}
}
