package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/CosmoTheDev/zwischen/models"
)

func findings() []models.Finding {
	return []models.Finding{
		{
			Kind: models.KindVulnerability, Scanner: "semgrep", Severity: models.SeverityLow,
			Location: models.Location{File: "h.py", Line: 9}, Message: "weak hash", RuleID: "py.md5",
			Raw: json.RawMessage(`{"check_id":"py.md5","extra":{"severity":"INFO"}}`),
		},
		models.Finding{
			Kind: models.KindSecret, Scanner: "gitleaks", Severity: models.SeverityCritical,
			Location: models.Location{File: ".env", Line: 3}, Message: "aws-access-key", RuleID: "aws-access-key",
		}.WithAnnotation(models.AIAnnotation{Priority: models.PriorityHigh, FixSuggestion: "Rotate the key", RiskExplanation: "Account takeover"}),
		models.Finding{
			Kind: models.KindSecret, Scanner: "gitleaks", Severity: models.SeverityHigh,
			Location: models.Location{File: "test/fixture.txt"}, Message: "hardcoded-password", RuleID: "hardcoded-password",
		}.WithAnnotation(models.AIAnnotation{IsFalsePositive: true}),
	}
}

func TestTerminalGroupsBySeverity(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Terminal(&buf, findings(), TerminalOptions{}))
	out := buf.String()

	critical := strings.Index(out, "CRITICAL (1)")
	high := strings.Index(out, "HIGH (1)")
	low := strings.Index(out, "LOW (1)")
	require.True(t, critical >= 0 && high >= 0 && low >= 0, out)
	assert.Less(t, critical, high)
	assert.Less(t, high, low)
	assert.NotContains(t, out, "MEDIUM (")

	assert.Contains(t, out, "Total findings: 3")
	assert.Contains(t, out, ".env:3 - aws-access-key")
	assert.Contains(t, out, "Fix: Rotate the key")
	assert.Contains(t, out, "Risk: Account takeover")
	assert.Contains(t, out, "[FALSE POSITIVE]")
	assert.Contains(t, out, "test/fixture.txt:? - hardcoded-password")
	assert.Contains(t, out, "Rule: py.md5")
}

func TestTerminalNoFindings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Terminal(&buf, nil, TerminalOptions{}))
	assert.Contains(t, buf.String(), "No security issues found")
}

func TestCompactShowsOnlyBlockingWithoutAIDetail(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Terminal(&buf, findings(), TerminalOptions{Compact: true, Threshold: "high"}))
	out := buf.String()

	assert.Contains(t, out, "Zwischen: 1 issue found")
	assert.Contains(t, out, ".env:3 - aws-access-key")
	assert.NotContains(t, out, "h.py")
	assert.NotContains(t, out, "fixture.txt", "false positives do not block")
	assert.NotContains(t, out, "Rotate the key")
	assert.Contains(t, out, "git push --no-verify")
}

func TestCompactSilentWhenNothingBlocks(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Terminal(&buf, findings(), TerminalOptions{Compact: true, Threshold: "none"}))
	assert.Empty(t, buf.String())
}

func TestJSONDocument(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, findings()))

	var doc struct {
		Findings []map[string]any `json:"findings"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Findings, 3)

	first := doc.Findings[0]
	assert.Equal(t, "vulnerability", first["kind"])
	assert.Equal(t, "semgrep", first["scanner"])
	assert.Equal(t, "low", first["severity"])
	assert.Equal(t, map[string]any{"check_id": "py.md5", "extra": map[string]any{"severity": "INFO"}}, first["raw"])
	assert.NotContains(t, first, "ai_annotation")

	ann, ok := doc.Findings[1]["ai_annotation"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "high", ann["priority"])
	assert.Equal(t, "Rotate the key", ann["fix_suggestion"])
	assert.Equal(t, false, ann["is_false_positive"])
}

func TestJSONEmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, nil))
	assert.JSONEq(t, `{"findings": []}`, buf.String())
}

func TestYAMLDocument(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, YAML(&buf, findings()))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	list, ok := doc["findings"].([]any)
	require.True(t, ok)
	require.Len(t, list, 3)

	second := list[1].(map[string]any)
	assert.Equal(t, "gitleaks", second["scanner"])
	assert.Equal(t, map[string]any{"file": ".env", "line": 3}, second["location"])
	assert.Contains(t, second, "ai_annotation")
}

func TestParseFormat(t *testing.T) {
	for raw, want := range map[string]Format{"": FormatTerminal, "JSON": FormatJSON, "yml": FormatYAML, "terminal": FormatTerminal} {
		got, err := ParseFormat(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("sarif")
	assert.Error(t, err)
}

func TestRenderDispatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, nil, TerminalOptions{}))
	assert.Contains(t, buf.String(), `"findings"`)
}
