// Package gemini implements llm.Model for Google Gemini.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/havenhq/haven/internal/llm"
)

type Provider struct {
	client *genai.Client
	config Config
}

type Config struct {
	APIKey          string
	Model           string
	Temperature     float32
	MaxOutputTokens int32
}

func New(ctx context.Context, apiKey, model string) (*Provider, error) {
	return NewWithConfig(ctx, Config{
		APIKey: apiKey,
		Model:  model,
	})
}

func NewWithConfig(ctx context.Context, config Config) (*Provider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if config.MaxOutputTokens == 0 {
		config.MaxOutputTokens = 4096
	}

	return &Provider{
		client: client,
		config: config,
	}, nil
}

func (p *Provider) ID() string {
	return fmt.Sprintf("gemini:%s", p.config.Model)
}

func (p *Provider) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.Response, error) {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: p.config.MaxOutputTokens,
	}

	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	if req.Temperature > 0 {
		config.Temperature = genai.Ptr(req.Temperature)
	} else if p.config.Temperature > 0 {
		config.Temperature = genai.Ptr(p.config.Temperature)
	}

	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(req.System)},
		}
	}

	if req.JSONOutput {
		config.ResponseMIMEType = "application/json"
	}

	contents := []*genai.Content{
		genai.NewContentFromText(req.Prompt, genai.RoleUser),
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.config.Model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini api error: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, llm.ErrEmptyResponse
	}

	candidate := resp.Candidates[0]

	response := &llm.Response{
		Model:        p.config.Model,
		FinishReason: string(candidate.FinishReason),
	}

	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			response.Content += part.Text
		}
	}

	if resp.UsageMetadata != nil {
		response.Usage = llm.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	return response, nil
}
