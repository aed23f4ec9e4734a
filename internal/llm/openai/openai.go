// Package openai implements llm.Model for OpenAI chat models.
package openai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/havenhq/haven/internal/llm"
)

type Provider struct {
	client *openai.Client
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
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &Provider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}
}

func (p *Provider) ID() string {
	return fmt.Sprintf("openai:%s", p.config.Model)
}

func (p *Provider) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.Response, error) {
	messages := []openai.ChatCompletionMessage{}

	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:    p.config.Model,
		Messages: messages,
	}

	if req.Temperature > 0 {
		chatReq.Temperature = req.Temperature
	} else if p.config.Temperature > 0 {
		chatReq.Temperature = p.config.Temperature
	}

	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	} else if p.config.MaxTokens > 0 {
		chatReq.MaxTokens = p.config.MaxTokens
	}

	if req.JSONOutput {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, llm.ErrEmptyResponse
	}

	choice := resp.Choices[0]

	return &llm.Response{
		Content:      choice.Message.Content,
		Model:        resp.Model,
		FinishReason: string(choice.FinishReason),
		Usage: llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}
