package models

import "strings"

// SeverityLevel represents the severity of a security finding.
// Every Finding carries exactly one of the four levels below.
type SeverityLevel string

const (
	SeverityCritical SeverityLevel = "critical"
	SeverityHigh     SeverityLevel = "high"
	SeverityMedium   SeverityLevel = "medium"
	SeverityLow      SeverityLevel = "low"
)

// SeverityOrder lists the levels from most to least severe. Reports group
// findings in this order.
var SeverityOrder = []SeverityLevel{
	SeverityCritical,
	SeverityHigh,
	SeverityMedium,
	SeverityLow,
}

// Weight returns a numeric weight for sorting (higher = more severe).
func (s SeverityLevel) Weight() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

func (s SeverityLevel) String() string {
	return string(s)
}

// Valid reports whether s is one of the four canonical levels.
func (s SeverityLevel) Valid() bool {
	return s.Weight() > 0
}

// MapSeverity normalises a scanner-reported severity (semgrep uses
// ERROR/WARNING/INFO) to a SeverityLevel. Matching is case-insensitive;
// anything unknown or empty maps to medium.
func MapSeverity(raw string) SeverityLevel {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "critical", "error":
		return SeverityCritical
	case "high", "warning":
		return SeverityHigh
	case "medium", "info":
		return SeverityMedium
	case "low":
		return SeverityLow
	default:
		return SeverityMedium
	}
}
