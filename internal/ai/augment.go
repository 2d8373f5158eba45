package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/CosmoTheDev/zwischen/models"
)

// Annotate returns a copy of findings where finding i carries the entry keyed
// i+1, when there is one. Length and order never change.
func Annotate(findings []models.Finding, analysis Analysis) []models.Finding {
	out := make([]models.Finding, len(findings))
	for i, f := range findings {
		entry, ok := analysis[strconv.Itoa(i+1)]
		if !ok {
			out[i] = f
			continue
		}
		out[i] = f.WithAnnotation(entry.Annotation())
	}
	return out
}

// Augment asks provider to review findings and attaches its verdicts.
//
// The returned slice is always safe to use: on any failure it is findings
// itself. The error is non-nil only when the provider call failed, so callers
// can warn; a reply that cannot be parsed is logged at debug level and
// otherwise ignored.
func Augment(ctx context.Context, provider Provider, findings []models.Finding, project Project) ([]models.Finding, error) {
	if len(findings) == 0 || provider == nil {
		return findings, nil
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	prompt := BuildPrompt(findings, project)
	start := time.Now()
	reply, err := provider.Submit(ctx, prompt)
	if err != nil {
		return findings, fmt.Errorf("AI analysis via %s: %w", provider.Name(), err)
	}
	slog.Debug("AI analysis completed",
		"provider", provider.Name(),
		"findings", len(findings),
		"duration", fmt.Sprintf("%.1fs", time.Since(start).Seconds()),
	)
	if isDebugPrompts() {
		slog.Debug("AI reply", "provider", provider.Name(), "reply", reply)
	}

	analysis, ok := ParseAnalysis(reply)
	if !ok {
		return findings, nil
	}
	return Annotate(findings, analysis), nil
}
