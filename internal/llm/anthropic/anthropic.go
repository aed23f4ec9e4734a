// Package anthropic implements llm.Model for Anthropic Claude.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/havenhq/haven/internal/llm"
)

type Provider struct {
	client anthropic.Client
	config Config
}

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	MaxTokens   int
}

func New(apiKey, model string) *Provider {
	return NewWithConfig(Config{
		APIKey: apiKey,
		Model:  model,
	})
}

func NewWithConfig(config Config) *Provider {
	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &Provider{
		client: anthropic.NewClient(opts...),
		config: config,
	}
}

func (p *Provider) ID() string {
	return fmt.Sprintf("anthropic:%s", p.config.Model)
}

func (p *Provider) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.Response, error) {
	prompt := req.Prompt
	if req.JSONOutput {
		prompt += "\n\nRespond with a single JSON object only, no surrounding prose."
	}

	msgReq := anthropic.MessageNewParams{
		Model: anthropic.Model(p.config.Model),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	if req.System != "" {
		msgReq.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	switch {
	case req.MaxTokens > 0:
		msgReq.MaxTokens = int64(req.MaxTokens)
	case p.config.MaxTokens > 0:
		msgReq.MaxTokens = int64(p.config.MaxTokens)
	default:
		// Anthropic requires max_tokens.
		msgReq.MaxTokens = int64(4096)
	}

	if req.Temperature > 0 {
		msgReq.Temperature = anthropic.Float(float64(req.Temperature))
	} else if p.config.Temperature > 0 {
		msgReq.Temperature = anthropic.Float(float64(p.config.Temperature))
	}

	resp, err := p.client.Messages.New(ctx, msgReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	return &llm.Response{
		Content:      content.String(),
		Model:        string(resp.Model),
		FinishReason: string(resp.StopReason),
		Usage: llm.Usage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
	}, nil
}
