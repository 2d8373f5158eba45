// Package pipeline runs one zwischen scan: scanners, merge, optional AI
// review and the blocking decision.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/CosmoTheDev/zwischen/internal/ai"
	"github.com/CosmoTheDev/zwischen/internal/config"
	"github.com/CosmoTheDev/zwischen/internal/gitdiff"
	"github.com/CosmoTheDev/zwischen/internal/policy"
	"github.com/CosmoTheDev/zwischen/internal/project"
	"github.com/CosmoTheDev/zwischen/internal/scanner"
	"github.com/CosmoTheDev/zwischen/models"
)

// Options describes a run.
type Options struct {
	Root    string
	Config  *config.Config
	Project project.Info

	// PrePush restricts the run to the files the push changes.
	PrePush bool
	// Only is the parsed --only selection (secrets, sast).
	Only []string

	// AIProvider is the --ai flag; it enables AI review outside pre-push
	// mode even when ai.enabled is false.
	AIProvider string
	// APIKey is the --api-key flag.
	APIKey string

	// Resolver locates scanner binaries. Defaults to ~/.zwischen/bin then PATH.
	Resolver scanner.Resolver
	// Scanners replaces the scanners built from Config.
	Scanners []scanner.Scanner
	// Provider replaces the provider built from the AI settings. It is
	// only used when AI review is enabled.
	Provider ai.Provider
	// ChangedFiles replaces gitdiff.ChangedFiles.
	ChangedFiles func(root string) []string
}

// Result is the outcome of a run.
type Result struct {
	Findings []models.Finding
	// Blocked is true when at least one finding meets the threshold.
	Blocked   bool
	Threshold string
	// Skipped is true in pre-push mode when the push changes no scannable
	// file; nothing ran.
	Skipped bool
	// AIUsed reports whether a provider was asked to review the findings.
	AIUsed bool
	// AIErr is why AI review of the findings did not happen or failed, for
	// example a missing credential or an unreachable provider. It is nil
	// when there were no findings to review.
	AIErr error
}

// ExitCode is the process exit status for the run.
func (r *Result) ExitCode() int {
	if r.Blocked {
		return 1
	}
	return 0
}

// Run executes the scan described by opts. The only error it returns is an
// unknown provider named with --ai; scanner and AI failures degrade the run
// instead.
func Run(ctx context.Context, opts Options) (*Result, error) {
	cfg := opts.Config
	res := &Result{Threshold: cfg.Blocking.Severity}

	provider, aiErr := selectProvider(opts)
	if aiErr != nil {
		// A misspelled --ai is a usage error; anything else only disables
		// the review.
		if opts.AIProvider != "" && errors.Is(aiErr, ai.ErrUnknownProvider) {
			return nil, aiErr
		}
		slog.Debug("AI review disabled", "error", aiErr)
	}

	ignore := gitdiff.NewMatcher(cfg.Ignore)
	req := scanner.Request{Root: opts.Root}
	if opts.PrePush {
		changed := opts.ChangedFiles
		if changed == nil {
			changed = gitdiff.ChangedFiles
		}
		req.Files = gitdiff.FilterFiles(opts.Root, changed(opts.Root), ignore)
		if len(req.Files) == 0 {
			slog.Debug("No changed files to scan")
			res.Skipped = true
			return res, nil
		}
	}

	scanners := opts.Scanners
	if scanners == nil {
		resolver := opts.Resolver
		if resolver == nil {
			resolver = defaultResolver()
		}
		scanners = scanner.BuildScanners(cfg, opts.Only, resolver)
	}

	findings := scanner.NewRunner(scanners).Run(ctx, req)
	if opts.PrePush {
		findings = gitdiff.FilterFindings(opts.Root, findings, req.Files)
	}
	findings = gitdiff.DropIgnored(opts.Root, findings, ignore)

	// Without findings there was nothing to review, so an unusable provider
	// is not worth reporting.
	if len(findings) > 0 {
		res.AIErr = aiErr
	}
	if len(findings) > 0 && provider != nil {
		res.AIUsed = true
		findings, res.AIErr = ai.Augment(ctx, provider, findings, ai.Project{
			Type:     opts.Project.PrimaryType,
			Language: opts.Project.Language,
		})
		if res.AIErr != nil {
			slog.Debug("AI review failed", "error", res.AIErr)
		}
	}

	res.Findings = findings
	res.Blocked = policy.ShouldBlock(findings, cfg.Blocking.Severity)
	return res, nil
}

func defaultResolver() scanner.Resolver {
	binDir, err := config.BinDir()
	if err != nil {
		slog.Debug("No zwischen bin directory", "error", err)
	}
	return scanner.NewResolver(binDir)
}

// AIProviderName returns the provider the run will use, or "" when AI review
// is off. The --ai flag wins outside pre-push mode; in pre-push mode review
// also needs ai.pre_push_enabled.
func AIProviderName(opts Options) string {
	cfg := opts.Config.AI
	configured := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if configured == "none" {
		configured = ""
	}

	if opts.PrePush {
		if !cfg.PrePushEnabled {
			return ""
		}
		if opts.AIProvider != "" {
			return opts.AIProvider
		}
		return configured
	}
	if opts.AIProvider != "" {
		return opts.AIProvider
	}
	if cfg.Enabled {
		return configured
	}
	return ""
}

// selectProvider builds the provider for the run, or nil when AI review is
// off.
func selectProvider(opts Options) (ai.Provider, error) {
	name := AIProviderName(opts)
	if name == "" {
		return nil, nil
	}
	if opts.Provider != nil {
		return opts.Provider, nil
	}
	return ai.New(name, providerOptions(opts.Config.AI, name, opts.APIKey))
}

// providerOptions applies the configured model, URL and key only when name
// is the configured provider; a different provider uses its own defaults.
func providerOptions(cfg config.AIConfig, name, flagKey string) ai.Options {
	opts := ai.Options{APIKey: flagKey}
	if canonical(name) != canonical(cfg.Provider) {
		return opts
	}
	opts.Model = cfg.Model
	// The default tree carries the Ollama model.
	if canonical(name) != "ollama" && cfg.Model == config.DefaultModel("ollama") {
		opts.Model = ""
	}
	opts.URL = cfg.URL
	if opts.APIKey == "" {
		opts.APIKey = cfg.APIKey
	}
	return opts
}

func canonical(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "claude" {
		return "anthropic"
	}
	return name
}
