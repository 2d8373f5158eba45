package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "llama3"
)

// OllamaProvider implements Provider using a local Ollama server's chat API.
type OllamaProvider struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllama creates an OllamaProvider. Ollama needs no API key. A URL given
// with the /api/chat suffix is accepted.
func NewOllama(opts Options) *OllamaProvider {
	base := strings.TrimSpace(opts.URL)
	if base == "" {
		base = defaultOllamaURL
	}
	base = strings.TrimRight(base, "/")
	base = strings.TrimSuffix(base, "/api/chat")

	model := opts.Model
	if model == "" {
		model = defaultOllamaModel
	}
	return &OllamaProvider{
		baseURL: base,
		model:   model,
		client:  httpClient(opts),
	}
}

func (o *OllamaProvider) Name() string { return "ollama" }

type ollamaRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaResponse struct {
	Message *struct {
		Content string `json:"content"`
	} `json:"message"`
	Error json.RawMessage `json:"error,omitempty"`
}

func (o *OllamaProvider) Submit(ctx context.Context, prompt string) (string, error) {
	if isDebugPrompts() {
		slog.Debug("Ollama prompt", "model", o.model, "prompt", prompt)
	}

	payload := ollamaRequest{
		Model:    o.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Stream:   false,
	}
	data, err := postJSON(ctx, o.client, "Ollama", o.baseURL+"/api/chat", nil, payload)
	if err != nil {
		return "", fmt.Errorf("%w (is Ollama running at %s?)", err, o.baseURL)
	}

	var apiResp ollamaResponse
	if err := json.Unmarshal(data, &apiResp); err != nil {
		return "", fmt.Errorf("parsing Ollama response: %w", err)
	}
	if msg := embeddedError(apiResp.Error); msg != "" {
		return "", &ProviderError{Provider: "Ollama", Message: msg}
	}
	if apiResp.Message == nil {
		return "", &ProviderError{Provider: "Ollama", Message: "unexpected response format: " + truncateForError(string(data), 300)}
	}
	return apiResp.Message.Content, nil
}
