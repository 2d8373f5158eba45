package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/CosmoTheDev/zwischen/internal/config"
	"github.com/CosmoTheDev/zwischen/internal/pipeline"
	"github.com/CosmoTheDev/zwischen/internal/project"
	"github.com/CosmoTheDev/zwischen/internal/report"
	"github.com/CosmoTheDev/zwischen/internal/scanner"
)

var (
	scanAI      string
	scanAPIKey  string
	scanFormat  string
	scanPrePush bool
	scanOnly    string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the current project for secrets and vulnerabilities",
	Long: `Runs the enabled scanners over the current directory, optionally asks an AI
provider to triage the results, and exits 1 when a finding meets the
blocking threshold (blocking.severity, default "high").

Examples:
  zwischen scan
  zwischen scan --only secrets
  zwischen scan --ai anthropic --format json
  zwischen scan --pre-push            # what the git hook runs`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	addScanFlags(scanCmd)
}

func addScanFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringVar(&scanAI, "ai", "", "enable AI analysis with this provider (ollama, openai, anthropic)")
	f.StringVar(&scanAPIKey, "api-key", "", "API key for the AI provider")
	f.StringVar(&scanFormat, "format", "terminal", "output format: terminal|json|yaml")
	f.BoolVar(&scanPrePush, "pre-push", false, "pre-push mode: changed files only, compact output")
	f.StringVar(&scanOnly, "only", "", "only run these scanner categories (secrets,sast)")
}

func runScan(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}
	format, err := report.ParseFormat(scanFormat)
	if err != nil {
		return err
	}

	cfg, err := config.Load(root, cfgFile)
	if err != nil {
		if !errors.Is(err, config.ErrMalformedConfig) {
			return fmt.Errorf("loading config: %w", err)
		}
		slog.Warn("Using default configuration", "error", err)
	}

	info := project.Detect(root)
	out := cmd.OutOrStdout()
	if !scanPrePush && format == report.FormatTerminal {
		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Scanning %s...", info.Label())))
	}

	res, err := pipeline.Run(cmd.Context(), pipeline.Options{
		Root:       root,
		Config:     cfg,
		Project:    info,
		PrePush:    scanPrePush,
		Only:       scanner.ParseOnly(scanOnly),
		AIProvider: scanAI,
		APIKey:     scanAPIKey,
	})
	if err != nil {
		return err
	}
	if res.Skipped {
		return nil
	}
	if res.AIErr != nil && !scanPrePush {
		fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render("AI analysis unavailable: "+res.AIErr.Error()))
	}

	opts := report.TerminalOptions{Compact: scanPrePush, Threshold: res.Threshold}
	if err := report.Render(out, format, res.Findings, opts); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if res.ExitCode() != 0 {
		return ErrBlocked
	}
	return nil
}
