package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"

	"github.com/CosmoTheDev/zwischen/models"
)

// GitleaksScanner implements Scanner using gitleaks for secret detection.
// gitleaks reports a JSON array of leaks without any severity of its own.
type GitleaksScanner struct {
	resolver Resolver
}

func NewGitleaksScanner(resolver Resolver) *GitleaksScanner {
	return &GitleaksScanner{resolver: resolver}
}

func (g *GitleaksScanner) Name() string             { return "gitleaks" }
func (g *GitleaksScanner) Kind() models.FindingKind { return models.KindSecret }

func (g *GitleaksScanner) Available(_ context.Context) bool {
	_, ok := g.resolver.Resolve("gitleaks")
	return ok
}

type gitleaksLeak struct {
	RuleID    string `json:"RuleID"`
	File      string `json:"File"`
	StartLine int    `json:"StartLine"`
	Secret    string `json:"Secret"`
}

// Scan runs gitleaks once over the project, or once per requested file.
func (g *GitleaksScanner) Scan(ctx context.Context, req Request) []models.Finding {
	gitleaks, ok := g.resolver.Resolve("gitleaks")
	if !ok {
		slog.Debug("gitleaks not installed; skipping")
		return nil
	}

	targets := []string{req.Root}
	if len(req.Files) > 0 {
		targets = targets[:0]
		for _, f := range req.Files {
			abs := f
			if !filepath.IsAbs(abs) {
				abs = filepath.Join(req.Root, f)
			}
			if _, err := os.Stat(abs); err != nil {
				slog.Debug("gitleaks: skipping missing file", "file", f)
				continue
			}
			targets = append(targets, f)
		}
	}

	var findings []models.Finding
	for _, target := range targets {
		if ctx.Err() != nil {
			break
		}
		out := g.run(ctx, gitleaks, req.Root, target)
		findings = append(findings, parseGitleaksOutput(out)...)
	}
	return findings
}

func (g *GitleaksScanner) run(ctx context.Context, gitleaks, root, source string) []byte {
	// nosemgrep: go.lang.security.audit.dangerous-exec-command.dangerous-exec-command
	cmd := exec.CommandContext(ctx, gitleaks,
		"detect",
		"--source", source,
		"--report-format", "json",
		"--report-path", "-",
		"--no-git",
	)
	cmd.Dir = root

	out, err := cmd.Output()
	// gitleaks exits 1 when it finds leaks; the report is still on stdout.
	if err != nil && !isExitCode(err, 1) {
		var exitErr *exec.ExitError
		if isExitError(err, &exitErr) {
			slog.Debug("gitleaks stderr", "source", source, "output", string(exitErr.Stderr))
		}
		slog.Debug("gitleaks failed", "source", source, "error", err)
	}
	return out
}

// parseGitleaksOutput converts a gitleaks JSON report into findings. Empty or
// malformed output yields no findings.
func parseGitleaksOutput(data []byte) []models.Finding {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	var leaks []json.RawMessage
	if err := json.Unmarshal(data, &leaks); err != nil {
		slog.Debug("Failed to parse gitleaks output", "error", err)
		return nil
	}

	findings := make([]models.Finding, 0, len(leaks))
	for _, raw := range leaks {
		var leak gitleaksLeak
		if err := json.Unmarshal(raw, &leak); err != nil {
			slog.Debug("Skipping unreadable gitleaks entry", "error", err)
			continue
		}
		message := leak.RuleID
		if message == "" {
			message = "Secret detected"
		}
		findings = append(findings, models.Finding{
			Kind:        models.KindSecret,
			Scanner:     "gitleaks",
			Severity:    gitleaksSeverity(leak.RuleID),
			Location:    models.Location{File: leak.File, Line: leak.StartLine},
			Message:     message,
			RuleID:      leak.RuleID,
			CodeSnippet: leak.Secret,
			Raw:         raw,
		})
	}
	return findings
}

var (
	criticalSecretRule = regexp.MustCompile(`(?i)aws.*key|api.*key|private.*key|secret.*key`)
	highSecretRule     = regexp.MustCompile(`(?i)password|token|credential`)
)

// gitleaksSeverity derives a severity from the rule id. The first matching
// class wins.
func gitleaksSeverity(ruleID string) models.SeverityLevel {
	switch {
	case criticalSecretRule.MatchString(ruleID):
		return models.SeverityCritical
	case highSecretRule.MatchString(ruleID):
		return models.SeverityHigh
	default:
		return models.SeverityMedium
	}
}
