package ai

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/CosmoTheDev/zwischen/models"
)

// Entry is the model's verdict on one finding.
type Entry struct {
	Priority        string `json:"priority"`
	IsFalsePositive bool   `json:"is_false_positive"`
	FixSuggestion   string `json:"fix_suggestion"`
	RiskExplanation string `json:"risk_explanation"`
}

// Annotation converts e into the annotation stored on a finding.
func (e Entry) Annotation() models.AIAnnotation {
	return models.AIAnnotation{
		Priority:        models.ParsePriority(e.Priority),
		IsFalsePositive: e.IsFalsePositive,
		FixSuggestion:   strings.TrimSpace(e.FixSuggestion),
		RiskExplanation: strings.TrimSpace(e.RiskExplanation),
	}
}

// Analysis maps 1-based finding numbers ("1", "2", ...) to entries.
type Analysis map[string]Entry

// ParseAnalysis pulls the JSON object out of a free-form model reply. It takes
// everything from the first '{' to the last '}' and decodes it. The second
// result is false when there is no such span or it is not a JSON object.
// Keys whose value is not an entry object are skipped on their own.
func ParseAnalysis(raw string) (Analysis, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		slog.Debug("AI reply has no JSON object")
		return nil, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw[start:end+1]), &fields); err != nil {
		slog.Debug("AI reply did not decode", "error", err)
		return nil, false
	}

	analysis := make(Analysis, len(fields))
	for key, value := range fields {
		var entry Entry
		if err := json.Unmarshal(value, &entry); err != nil {
			slog.Debug("Skipping AI reply key", "key", key, "error", err)
			continue
		}
		analysis[key] = entry
	}
	return analysis, true
}
