package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/CosmoTheDev/zwischen/models"
)

// Format selects the report renderer.
type Format string

const (
	FormatTerminal Format = "terminal"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// ParseFormat validates a --format value.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "", FormatTerminal:
		return FormatTerminal, nil
	case FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (use terminal, json or yaml)", raw)
	}
}

// document is the machine-readable report.
type document struct {
	Findings []models.Finding `json:"findings"`
}

// JSON writes {"findings": [...]} with every field of every finding. Raw
// tool payloads are embedded verbatim.
func JSON(w io.Writer, findings []models.Finding) error {
	if findings == nil {
		findings = []models.Finding{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(document{Findings: findings}); err != nil {
		return fmt.Errorf("encoding JSON report: %w", err)
	}
	return nil
}

// YAML writes the same document as JSON. It goes through the JSON encoding so
// that field names and raw payloads match exactly.
func YAML(w io.Writer, findings []models.Finding) error {
	if findings == nil {
		findings = []models.Finding{}
	}
	data, err := json.Marshal(document{Findings: findings})
	if err != nil {
		return fmt.Errorf("encoding YAML report: %w", err)
	}
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("encoding YAML report: %w", err)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(tree); err != nil {
		return fmt.Errorf("encoding YAML report: %w", err)
	}
	return enc.Close()
}

// Render dispatches to the renderer for format.
func Render(w io.Writer, format Format, findings []models.Finding, opts TerminalOptions) error {
	switch format {
	case FormatJSON:
		return JSON(w, findings)
	case FormatYAML:
		return YAML(w, findings)
	default:
		return Terminal(w, findings, opts)
	}
}
