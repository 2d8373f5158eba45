package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os/exec"

	"github.com/CosmoTheDev/zwischen/models"
)

// semgrepBinaries are tried in order. opengrep is a CLI-compatible fork.
var semgrepBinaries = []string{"semgrep", "opengrep"}

// SemgrepScanner implements Scanner using semgrep (or opengrep) for SAST.
type SemgrepScanner struct {
	resolver Resolver
	ruleset  string
}

func NewSemgrepScanner(resolver Resolver, ruleset string) *SemgrepScanner {
	return &SemgrepScanner{resolver: resolver, ruleset: ruleset}
}

func (s *SemgrepScanner) Name() string             { return "semgrep" }
func (s *SemgrepScanner) Kind() models.FindingKind { return models.KindVulnerability }

func (s *SemgrepScanner) Available(_ context.Context) bool {
	_, ok := s.Binary()
	return ok
}

// Binary returns the resolved semgrep or opengrep executable.
func (s *SemgrepScanner) Binary() (string, bool) {
	for _, name := range semgrepBinaries {
		if p, ok := s.resolver.Resolve(name); ok {
			return p, true
		}
	}
	return "", false
}

// semgrepResult holds the fields of one entry in semgrep's "results" array
// that a Finding needs. The entry itself is kept verbatim as the raw payload.
type semgrepResult struct {
	CheckID string `json:"check_id"`
	Path    string `json:"path"`
	Start   struct {
		Line int `json:"line"`
	} `json:"start"`
	Extra struct {
		Message  string `json:"message"`
		Severity string `json:"severity"`
		Lines    string `json:"lines"`
	} `json:"extra"`
}

// Scan runs a single semgrep invocation over the requested files, or over
// the whole project when none are given.
func (s *SemgrepScanner) Scan(ctx context.Context, req Request) []models.Finding {
	semgrep, ok := s.Binary()
	if !ok {
		slog.Debug("semgrep/opengrep not installed; skipping")
		return nil
	}

	args := []string{"scan", "--json", "--config", s.ruleset}
	if len(req.Files) > 0 {
		args = append(args, req.Files...)
	} else {
		args = append(args, req.Root)
	}

	// nosemgrep: go.lang.security.audit.dangerous-exec-command.dangerous-exec-command
	cmd := exec.CommandContext(ctx, semgrep, args...)
	cmd.Dir = req.Root

	out, err := cmd.Output()
	// semgrep exits 1 when it finds issues; the JSON is still on stdout.
	if err != nil && !isExitCode(err, 1) {
		var exitErr *exec.ExitError
		if isExitError(err, &exitErr) {
			slog.Debug("semgrep stderr", "output", string(exitErr.Stderr))
		}
		slog.Debug("semgrep failed", "binary", semgrep, "error", err)
	}
	return parseSemgrepOutput(out)
}

// parseSemgrepOutput converts semgrep's JSON document into findings. Empty or
// malformed output yields no findings.
func parseSemgrepOutput(data []byte) []models.Finding {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	var output struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(data, &output); err != nil {
		slog.Debug("Failed to parse semgrep output", "error", err)
		return nil
	}

	findings := make([]models.Finding, 0, len(output.Results))
	for _, raw := range output.Results {
		var r semgrepResult
		if err := json.Unmarshal(raw, &r); err != nil {
			slog.Debug("Skipping unreadable semgrep result", "error", err)
			continue
		}
		message := r.Extra.Message
		if message == "" {
			message = r.CheckID
		}
		findings = append(findings, models.Finding{
			Kind:        models.KindVulnerability,
			Scanner:     "semgrep",
			Severity:    models.MapSeverity(r.Extra.Severity),
			Location:    models.Location{File: r.Path, Line: r.Start.Line},
			Message:     message,
			RuleID:      r.CheckID,
			CodeSnippet: r.Extra.Lines,
			Raw:         raw,
		})
	}
	return findings
}
