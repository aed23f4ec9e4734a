package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

const defaultObjectAttempts = 5

// GenerateObject runs the model until its output parses into out, up to
// defaultObjectAttempts times. Models occasionally wrap JSON in markdown
// fences or emit a malformed object; each failed parse is retried with
// the same request.
func GenerateObject(ctx context.Context, model Model, req GenerateRequest, out any) error {
	req.JSONOutput = true

	var lastErr error

	for attempt := 1; attempt <= defaultObjectAttempts; attempt++ {
		resp, err := model.Generate(ctx, req)
		if err != nil {
			return fmt.Errorf("generation failed: %w", err)
		}

		content := stripJSONFences(resp.Content)
		if content == "" {
			lastErr = ErrEmptyResponse
			continue
		}

		if err := json.Unmarshal([]byte(content), out); err != nil {
			lastErr = fmt.Errorf("failed to parse model output: %w", err)
			log.Warn().Err(err).Int("attempt", attempt).Str("model", model.ID()).
				Msg("Model output did not parse, retrying")
			continue
		}

		return nil
	}

	return fmt.Errorf("no parseable output after %d attempts: %w", defaultObjectAttempts, lastErr)
}

// stripJSONFences removes a surrounding ```json ... ``` block if present.
func stripJSONFences(content string) string {
	content = strings.TrimSpace(content)

	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")

	return strings.TrimSpace(content)
}
