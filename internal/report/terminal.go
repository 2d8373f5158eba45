package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/CosmoTheDev/zwischen/internal/policy"
	"github.com/CosmoTheDev/zwischen/models"
)

// TerminalOptions controls the human-readable report.
type TerminalOptions struct {
	// Compact is the pre-push layout: only blocking findings, no AI detail,
	// nothing at all when nothing blocks.
	Compact bool
	// Threshold is the blocking.severity value, used by the compact layout.
	Threshold string
}

// Terminal writes findings grouped by severity (critical first), with a count
// per group.
func Terminal(w io.Writer, findings []models.Finding, opts TerminalOptions) error {
	if opts.Compact {
		return compact(w, findings, opts.Threshold)
	}

	st := newStyles(w)
	var b strings.Builder

	b.WriteString("\n" + st.title.Render("Zwischen Security Scan Results") + "\n\n")
	if len(findings) == 0 {
		b.WriteString(st.ok.Render("✓ No security issues found") + "\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "Total findings: %d\n", len(findings))
	groups := groupBySeverity(findings)
	for _, level := range models.SeverityOrder {
		group := groups[level]
		if len(group) == 0 {
			continue
		}
		style := st.severity(level)
		fmt.Fprintf(&b, "\n%s\n", style.Render(fmt.Sprintf("%s (%d)", strings.ToUpper(level.String()), len(group))))
		for _, f := range group {
			writeFinding(&b, st, f)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeFinding(b *strings.Builder, st styles, f models.Finding) {
	if f.IsFalsePositive() {
		fmt.Fprintf(b, "  %s %s - %s\n", st.dim.Render("[FALSE POSITIVE]"), location(f), f.Message)
	} else {
		fmt.Fprintf(b, "  %s - %s\n", location(f), f.Message)
	}
	if f.RuleID != "" && f.RuleID != f.Message {
		b.WriteString("    " + st.dim.Render("Rule: "+f.RuleID) + "\n")
	}
	if f.AI == nil {
		return
	}
	if f.AI.FixSuggestion != "" {
		b.WriteString("    " + st.fix.Render("Fix: "+f.AI.FixSuggestion) + "\n")
	}
	if f.AI.RiskExplanation != "" {
		b.WriteString("    " + st.risk.Render("Risk: "+f.AI.RiskExplanation) + "\n")
	}
}

// compact renders the terse pre-push report.
func compact(w io.Writer, findings []models.Finding, threshold string) error {
	blocking := policy.Blocking(findings, threshold)
	if len(blocking) == 0 {
		return nil
	}

	st := newStyles(w)
	var b strings.Builder

	noun := "issues"
	if len(blocking) == 1 {
		noun = "issue"
	}
	fmt.Fprintf(&b, "Zwischen: %d %s found\n\n", len(blocking), noun)

	groups := groupBySeverity(blocking)
	for _, level := range models.SeverityOrder {
		for _, f := range groups[level] {
			label := st.severity(level).Render(fmt.Sprintf("%-8s", strings.ToUpper(level.String())))
			fmt.Fprintf(&b, "  %s %s - %s\n", label, location(f), f.Message)
		}
	}

	b.WriteString("\nPush blocked. Fix the issues above or:\n")
	b.WriteString("  • Run 'zwischen scan' for the full report\n")
	b.WriteString("  • Run 'git push --no-verify' or set ZWISCHEN_SKIP=1 to skip (not recommended)\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func groupBySeverity(findings []models.Finding) map[models.SeverityLevel][]models.Finding {
	groups := make(map[models.SeverityLevel][]models.Finding, len(models.SeverityOrder))
	for _, f := range findings {
		level := f.Severity
		if !level.Valid() {
			level = models.SeverityMedium
		}
		groups[level] = append(groups[level], f)
	}
	return groups
}

func location(f models.Finding) string {
	if f.Location.Line > 0 {
		return fmt.Sprintf("%s:%d", f.Location.File, f.Location.Line)
	}
	return f.Location.File + ":?"
}
