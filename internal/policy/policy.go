// Package policy decides whether a set of findings fails the run.
package policy

import (
	"strings"

	"github.com/CosmoTheDev/zwischen/models"
)

// Threshold is the configured blocking.severity value.
type Threshold string

const (
	ThresholdCritical Threshold = "critical"
	ThresholdHigh     Threshold = "high"
	ThresholdNone     Threshold = "none"
)

// ParseThreshold normalises a configured value. Anything unrecognised
// behaves like "high".
func ParseThreshold(raw string) Threshold {
	switch t := Threshold(strings.ToLower(strings.TrimSpace(raw))); t {
	case ThresholdCritical, ThresholdNone:
		return t
	default:
		return ThresholdHigh
	}
}

// Blocks reports whether a single finding meets threshold. Findings the AI
// marked as false positives never block.
func Blocks(f models.Finding, threshold Threshold) bool {
	if f.IsFalsePositive() {
		return false
	}
	switch threshold {
	case ThresholdCritical:
		return f.Severity == models.SeverityCritical
	case ThresholdNone:
		return false
	default:
		return f.Severity == models.SeverityCritical || f.Severity == models.SeverityHigh
	}
}

// ShouldBlock reports whether any finding meets the raw configured threshold.
func ShouldBlock(findings []models.Finding, threshold string) bool {
	t := ParseThreshold(threshold)
	for _, f := range findings {
		if Blocks(f, t) {
			return true
		}
	}
	return false
}

// Blocking returns the findings that meet threshold, in input order.
func Blocking(findings []models.Finding, threshold string) []models.Finding {
	t := ParseThreshold(threshold)
	var out []models.Finding
	for _, f := range findings {
		if Blocks(f, t) {
			out = append(out, f)
		}
	}
	return out
}
