package models

import (
	"encoding/json"
	"strings"
)

// FindingKind identifies the scanner category that produced a finding.
type FindingKind string

const (
	KindSecret        FindingKind = "secret"        // secret detection (gitleaks)
	KindVulnerability FindingKind = "vulnerability" // static analysis (semgrep/opengrep)
)

// Priority is the AI's view of how urgently a finding should be handled.
// The zero value means the model gave no priority.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ParsePriority maps free-form model output onto a Priority, returning the
// zero value for anything it does not recognise.
func ParsePriority(raw string) Priority {
	switch Priority(strings.ToLower(strings.TrimSpace(raw))) {
	case PriorityHigh:
		return PriorityHigh
	case PriorityMedium:
		return PriorityMedium
	case PriorityLow:
		return PriorityLow
	default:
		return ""
	}
}

// Location points at the file and line a finding was reported for. The path
// is kept exactly as the tool reported it. Line is 1-based, 0 when unknown.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// AIAnnotation is the optional enrichment attached by AI augmentation.
type AIAnnotation struct {
	Priority        Priority `json:"priority,omitempty"`
	IsFalsePositive bool     `json:"is_false_positive"`
	FixSuggestion   string   `json:"fix_suggestion,omitempty"`
	RiskExplanation string   `json:"risk_explanation,omitempty"`
}

// Finding is one normalised security observation emitted by a scanner.
// Findings are not modified after emission; augmentation returns annotated
// copies.
type Finding struct {
	Kind        FindingKind     `json:"kind"`
	Scanner     string          `json:"scanner"`
	Severity    SeverityLevel   `json:"severity"`
	Location    Location        `json:"location"`
	Message     string          `json:"message"`
	RuleID      string          `json:"rule_id"`
	CodeSnippet string          `json:"code_snippet"`
	Raw         json.RawMessage `json:"raw,omitempty"`
	AI          *AIAnnotation   `json:"ai_annotation,omitempty"`
}

// IsFalsePositive reports whether AI review flagged the finding as a false
// positive.
func (f Finding) IsFalsePositive() bool {
	return f.AI != nil && f.AI.IsFalsePositive
}

// WithAnnotation returns a copy of f carrying a.
func (f Finding) WithAnnotation(a AIAnnotation) Finding {
	f.AI = &a
	return f
}
