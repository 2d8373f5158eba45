package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// requestTimeout bounds the single call made per run.
const requestTimeout = 120 * time.Second

var (
	// ErrUnknownProvider is returned by New for a name outside the supported set.
	ErrUnknownProvider = errors.New("unknown AI provider")
	// ErrMissingCredential is returned by New when a hosted provider has no API key.
	ErrMissingCredential = errors.New("missing API key")
)

// Provider abstracts calls to a language model.
// To add a new provider:
//  1. Create a file in internal/ai/ (e.g. mymodel.go)
//  2. Implement Provider
//  3. Register in New()
type Provider interface {
	// Name returns the provider identifier (e.g. "openai", "ollama").
	Name() string

	// Submit sends prompt in one request and returns the model's raw text.
	Submit(ctx context.Context, prompt string) (string, error)
}

// Options configures a provider. Empty fields fall back to the provider's
// defaults.
type Options struct {
	Model string
	// URL is the Ollama server address.
	URL string
	// APIKey is used by the hosted providers; when empty the provider reads
	// OPENAI_API_KEY or ANTHROPIC_API_KEY.
	APIKey string
	// Endpoint replaces the hosted provider's API endpoint.
	Endpoint string
	// Client replaces the default HTTP client (120s timeout).
	Client *http.Client
}

// ProviderError is a failed provider call: a non-2xx status or an error
// embedded in an otherwise successful response.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Provider, e.Message)
}

// Providers lists the accepted provider names in display order.
var Providers = []string{"ollama", "openai", "anthropic"}

// New returns the provider registered under name. "claude" is accepted as an
// alias for "anthropic".
func New(name string, opts Options) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ollama":
		return NewOllama(opts), nil
	case "openai":
		p, err := NewOpenAI(opts)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "anthropic", "claude":
		p, err := NewAnthropic(opts)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownProvider, name, strings.Join(Providers, ", "))
	}
}

// CredentialEnv returns the environment variable a provider reads its API key
// from, or "" when it needs none.
func CredentialEnv(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic", "claude":
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

func resolveKey(explicit, envName string) string {
	if k := strings.TrimSpace(explicit); k != "" {
		return k
	}
	return strings.TrimSpace(os.Getenv(envName))
}

func httpClient(opts Options) *http.Client {
	if opts.Client != nil {
		return opts.Client
	}
	return &http.Client{Timeout: requestTimeout}
}
