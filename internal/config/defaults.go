package config

import "fmt"

const (
	DefaultConfigFile = ".zwischen.yml"
	DefaultConfigDir  = ".zwischen"
	DefaultBinDir     = ".zwischen/bin"

	DefaultSemgrepRuleset = "p/security-audit"
	DefaultOllamaURL      = "http://localhost:11434"
)

// Defaults returns the built-in settings tree. Each call returns a fresh copy,
// so callers may merge into or otherwise modify the result freely.
func Defaults() map[string]any {
	return map[string]any{
		"ai": map[string]any{
			"enabled":          true,
			"pre_push_enabled": false,
			"provider":         "ollama",
			"model":            "llama3",
			"url":              DefaultOllamaURL,
			"api_key":          "",
		},
		"blocking": map[string]any{
			"severity": "high",
		},
		"scanners": map[string]any{
			"gitleaks": map[string]any{"enabled": true},
			"semgrep":  map[string]any{"enabled": true, "config": DefaultSemgrepRuleset},
		},
		"ignore": []any{
			"**/node_modules/**",
			"**/vendor/**",
			"**/.git/**",
			"**/dist/**",
			"**/build/**",
			"**/test/fixtures/**",
		},
	}
}

const exampleTemplate = `# Zwischen Configuration

# AI Provider Configuration
ai:
  enabled: %t
  pre_push_enabled: false  # AI review inside the pre-push hook (slower pushes)
  provider: %s         # Options: ollama, openai, anthropic
  model: %s
  # url: http://localhost:11434  # For Ollama (default)
  # api_key: null          # For OpenAI/Anthropic (or use OPENAI_API_KEY / ANTHROPIC_API_KEY)

# What blocks a push
blocking:
  severity: %s  # high: block on high or critical (default)
  # severity: critical  # only block on critical
  # severity: none      # never block, just warn

# Scanner Configuration
scanners:
  gitleaks: true  # Installed by 'zwischen init' or 'zwischen doctor --install-tools'
  semgrep:
    enabled: true
    config: p/security-audit

# Ignored Paths (glob patterns)
ignore:
  - "**/node_modules/**"
  - "**/vendor/**"
  - "**/.git/**"
  - "**/dist/**"
  - "**/build/**"
`

// ExampleOptions are the values 'zwischen init' asks for.
type ExampleOptions struct {
	Provider         string
	Model            string
	BlockingSeverity string
}

// RenderExample returns a commented .zwischen.yml with opts filled in.
// An empty or "none" provider writes the file with AI disabled.
func RenderExample(opts ExampleOptions) string {
	provider := opts.Provider
	enabled := provider != "" && provider != "none"
	if !enabled {
		provider = "ollama"
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel(provider)
	}
	severity := opts.BlockingSeverity
	if severity == "" {
		severity = "high"
	}
	return fmt.Sprintf(exampleTemplate, enabled, provider, model, severity)
}

// DefaultModel returns the model used for provider when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case "openai":
		return "gpt-4o-mini"
	case "anthropic", "claude":
		return "claude-3-haiku-20240307"
	default:
		return "llama3"
	}
}
