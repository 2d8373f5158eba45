package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CosmoTheDev/zwischen/internal/config"
)

func TestDescribeAI(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	cases := []struct {
		name    string
		ai      config.AIConfig
		ok      bool
		contain string
	}{
		{"disabled", config.AIConfig{Provider: "ollama"}, true, "disabled"},
		{"none", config.AIConfig{Enabled: true, Provider: "none"}, true, "disabled"},
		{"ollama", config.AIConfig{Enabled: true, Provider: "ollama", Model: "llama3", URL: "http://localhost:11434"}, true, "ollama / llama3 at http://localhost:11434"},
		{"openai without key", config.AIConfig{Enabled: true, Provider: "openai", Model: "llama3"}, false, "OPENAI_API_KEY"},
		{"anthropic with key", config.AIConfig{Enabled: true, Provider: "claude", APIKey: "k", Model: "llama3"}, true, "claude / claude-3-haiku-20240307"},
		{"unknown", config.AIConfig{Enabled: true, Provider: "gemini"}, false, "unknown provider"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			line, ok := describeAI(&config.Config{AI: tc.ai})
			assert.Equal(t, tc.ok, ok)
			assert.Contains(t, line, tc.contain)
		})
	}
}

func TestInstallHint(t *testing.T) {
	assert.Contains(t, installHint("gitleaks"), "--install-tools")
	assert.Contains(t, installHint("semgrep"), "pip install semgrep")
	assert.Empty(t, installHint("trivy"))
}
