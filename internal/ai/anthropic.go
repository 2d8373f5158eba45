package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

const (
	anthropicMessagesEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicVersionHeader    = "2023-06-01"
	anthropicDefaultModel     = "claude-3-haiku-20240307"
	anthropicMaxTokens        = 4096
)

// AnthropicProvider implements Provider using the Anthropic Messages API.
type AnthropicProvider struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewAnthropic creates an AnthropicProvider. The key comes from opts.APIKey or
// ANTHROPIC_API_KEY; without one it returns ErrMissingCredential.
func NewAnthropic(opts Options) (*AnthropicProvider, error) {
	key := resolveKey(opts.APIKey, "ANTHROPIC_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("%w: set ANTHROPIC_API_KEY or pass --api-key", ErrMissingCredential)
	}
	model := opts.Model
	if model == "" {
		model = anthropicDefaultModel
	}
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = anthropicMessagesEndpoint
	}
	return &AnthropicProvider{
		apiKey:   key,
		model:    model,
		endpoint: endpoint,
		client:   httpClient(opts),
	}, nil
}

func (c *AnthropicProvider) Name() string { return "anthropic" }

type anthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error json.RawMessage `json:"error,omitempty"`
}

func (c *AnthropicProvider) Submit(ctx context.Context, prompt string) (string, error) {
	if isDebugPrompts() {
		slog.Debug("Anthropic prompt", "model", c.model, "prompt", prompt)
	}

	payload := anthropicRequest{
		Model:     c.model,
		MaxTokens: anthropicMaxTokens,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
	}
	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": anthropicVersionHeader,
	}
	data, err := postJSON(ctx, c.client, "Anthropic", c.endpoint, headers, payload)
	if err != nil {
		return "", err
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(data, &apiResp); err != nil {
		return "", fmt.Errorf("parsing Anthropic API response: %w", err)
	}
	if msg := embeddedError(apiResp.Error); msg != "" {
		return "", &ProviderError{Provider: "Anthropic", Message: msg}
	}
	if len(apiResp.Content) == 0 {
		return "", &ProviderError{Provider: "Anthropic", Message: "no content returned"}
	}
	return apiResp.Content[0].Text, nil
}
