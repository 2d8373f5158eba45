package config

// Config is the merged configuration for one run. It is built once by Load
// and treated as read-only afterwards.
type Config struct {
	AI       AIConfig                 `mapstructure:"ai"       json:"ai"`
	Blocking BlockingConfig           `mapstructure:"blocking" json:"blocking"`
	Scanners map[string]ScannerConfig `mapstructure:"scanners" json:"scanners" validate:"dive"`
	// Ignore lists glob patterns for paths that are never handed to scanners.
	Ignore []string `mapstructure:"ignore" json:"ignore"`

	tree map[string]any
	path string
}

// AIConfig controls the optional AI review of findings.
type AIConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
	// PrePushEnabled allows AI review inside the pre-push hook.
	PrePushEnabled bool `mapstructure:"pre_push_enabled" json:"pre_push_enabled"`
	// Provider is "ollama" (default), "openai" or "anthropic" ("claude" is an alias).
	Provider string `mapstructure:"provider" json:"provider" validate:"omitempty,oneof=ollama openai anthropic claude none"`
	Model    string `mapstructure:"model"    json:"model"`
	// URL is the Ollama server; ignored by the hosted providers.
	URL    string `mapstructure:"url"     json:"url"     validate:"omitempty,url"`
	APIKey string `mapstructure:"api_key" json:"api_key"`
}

// BlockingConfig controls which findings fail the run.
type BlockingConfig struct {
	// Severity is "high" (default), "critical" or "none". Any other value
	// behaves like "high".
	Severity string `mapstructure:"severity" json:"severity" validate:"omitempty,oneof=critical high none"`
}

// ScannerConfig is the per-scanner section. In YAML it may also be written
// as a bare boolean ("gitleaks: true").
type ScannerConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
	// Config is the rule-set identifier (semgrep only).
	Config string `mapstructure:"config" json:"config,omitempty"`
}
