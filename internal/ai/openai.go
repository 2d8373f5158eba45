package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

const (
	defaultOpenAIEndpoint = "https://api.openai.com/v1/chat/completions"
	defaultOpenAIModel    = "gpt-4o-mini"
)

// OpenAIProvider implements Provider using the OpenAI chat completions API.
type OpenAIProvider struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewOpenAI creates an OpenAIProvider. The key comes from opts.APIKey or
// OPENAI_API_KEY; without one it returns ErrMissingCredential.
func NewOpenAI(opts Options) (*OpenAIProvider, error) {
	key := resolveKey(opts.APIKey, "OPENAI_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("%w: set OPENAI_API_KEY or pass --api-key", ErrMissingCredential)
	}
	model := opts.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = defaultOpenAIEndpoint
	}
	return &OpenAIProvider{
		apiKey:   key,
		model:    model,
		endpoint: endpoint,
		client:   httpClient(opts),
	}, nil
}

func (o *OpenAIProvider) Name() string { return "openai" }

type openAIRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error json.RawMessage `json:"error,omitempty"`
}

func (o *OpenAIProvider) Submit(ctx context.Context, prompt string) (string, error) {
	if isDebugPrompts() {
		slog.Debug("OpenAI prompt", "model", o.model, "prompt", prompt)
	}

	payload := openAIRequest{
		Model:    o.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}
	headers := map[string]string{"Authorization": "Bearer " + o.apiKey}
	data, err := postJSON(ctx, o.client, "OpenAI", o.endpoint, headers, payload)
	if err != nil {
		return "", err
	}

	var apiResp openAIResponse
	if err := json.Unmarshal(data, &apiResp); err != nil {
		return "", fmt.Errorf("parsing OpenAI response: %w", err)
	}
	if msg := embeddedError(apiResp.Error); msg != "" {
		return "", &ProviderError{Provider: "OpenAI", Message: msg}
	}
	if len(apiResp.Choices) == 0 {
		return "", &ProviderError{Provider: "OpenAI", Message: "no choices returned"}
	}
	return apiResp.Choices[0].Message.Content, nil
}
