package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/CosmoTheDev/zwischen/internal/config"
	"github.com/CosmoTheDev/zwischen/models"
)

// Runner orchestrates parallel execution of multiple scanners.
type Runner struct {
	scanners []Scanner
}

// NewRunner creates a Runner. The order of scanners is the order in which
// their findings are merged.
func NewRunner(scanners []Scanner) *Runner {
	return &Runner{scanners: scanners}
}

// Scanners returns the configured scanners in merge order.
func (r *Runner) Scanners() []Scanner {
	return r.scanners
}

// Available returns the subset of scanners whose tool can be resolved.
func (r *Runner) Available(ctx context.Context) []Scanner {
	out := make([]Scanner, 0, len(r.scanners))
	for _, s := range r.scanners {
		if s.Available(ctx) {
			out = append(out, s)
		}
	}
	return out
}

// Run executes every scanner concurrently and concatenates their findings in
// registration order, regardless of which finished first. Nothing is
// deduplicated.
func (r *Runner) Run(ctx context.Context, req Request) []models.Finding {
	slots := make([][]models.Finding, len(r.scanners))

	var wg sync.WaitGroup
	for i, s := range r.scanners {
		wg.Add(1)
		go func(i int, s Scanner) {
			defer wg.Done()
			slots[i] = r.runOne(ctx, s, req)
		}(i, s)
	}
	wg.Wait()

	var total int
	for _, slot := range slots {
		total += len(slot)
	}
	merged := make([]models.Finding, 0, total)
	for _, slot := range slots {
		merged = append(merged, slot...)
	}
	return merged
}

func (r *Runner) runOne(ctx context.Context, s Scanner, req Request) []models.Finding {
	if !s.Available(ctx) {
		slog.Debug("Scanner not available", "scanner", s.Name())
		return nil
	}

	slog.Debug("Running scanner", "scanner", s.Name(), "kind", s.Kind(), "files", len(req.Files))
	start := time.Now()
	findings := s.Scan(ctx, req)
	slog.Debug("Scanner completed",
		"scanner", s.Name(),
		"findings", len(findings),
		"duration", fmt.Sprintf("%.1fs", time.Since(start).Seconds()),
	)
	return findings
}

// categoryScanners maps the --only categories to scanner names.
var categoryScanners = map[string]string{
	"secrets": "gitleaks",
	"sast":    "semgrep",
}

// ParseOnly splits a comma-separated --only value ("secrets,sast") into
// lower-cased categories.
func ParseOnly(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// BuildScanners constructs the scanners enabled in cfg, always in the order
// gitleaks then semgrep. A non-empty only further restricts the set by
// category (see ParseOnly).
func BuildScanners(cfg *config.Config, only []string, resolver Resolver) []Scanner {
	selected := map[string]bool{}
	for _, category := range only {
		name, ok := categoryScanners[category]
		if !ok {
			slog.Warn("Unknown scanner category", "category", category)
			continue
		}
		selected[name] = true
	}

	candidates := []Scanner{
		NewGitleaksScanner(resolver),
		NewSemgrepScanner(resolver, cfg.SemgrepRuleset()),
	}

	scanners := make([]Scanner, 0, len(candidates))
	for _, s := range candidates {
		if !cfg.ScannerEnabled(s.Name()) {
			continue
		}
		if len(only) > 0 && !selected[s.Name()] {
			continue
		}
		scanners = append(scanners, s)
	}
	return scanners
}
