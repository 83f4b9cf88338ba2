package llm

import (
	"context"
	"fmt"
	"strings"

	"earshot/internal/services"
)

// Translate converts Russian transcript text to English, keeping the
// "Speaker X: text" line layout.
func (c *Client) Translate(ctx context.Context, russianText string) (string, error) {
	russianText = strings.TrimSpace(russianText)
	if russianText == "" {
		return "", nil
	}
	content, err := c.complete(ctx, "llm translate", chatCompletionRequest{
		Messages: []chatMessage{
			{Role: "system", Content: translateSystemPrompt},
			{Role: "user", Content: translateUserPrompt + russianText},
		},
	})
	if err != nil {
		return "", services.Wrap(services.ErrExternal, "llm", "translate", "", err)
	}
	return stripCodeFence(content), nil
}

// Summarize condenses text into at most six sentences.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", services.Wrap(services.ErrValidation, "llm", "summarize", "text required", nil)
	}
	content, err := c.complete(ctx, "llm summarize", chatCompletionRequest{
		Messages: []chatMessage{
			{Role: "system", Content: summarySystemPrompt},
			{Role: "user", Content: summaryUserPrompt + text},
		},
	})
	if err != nil {
		return "", services.Wrap(services.ErrExternal, "llm", "summarize", "", err)
	}
	return stripCodeFence(content), nil
}

// HealthCheck issues a fast ping to verify the API key and model are usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	content, err := c.complete(ctx, "llm health", chatCompletionRequest{
		Messages: []chatMessage{
			{Role: "system", Content: healthSystemPrompt},
			{Role: "user", Content: healthUserPrompt},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return services.Wrap(services.ErrExternal, "llm", "health", "", err)
	}
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := DecodeLLMJSON(content, &parsed); err != nil {
		return fmt.Errorf("llm health: parse payload: %w", err)
	}
	if !parsed.OK {
		return services.Wrap(services.ErrExternal, "llm", "health", "unexpected response", nil)
	}
	return nil
}
