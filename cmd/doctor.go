package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CosmoTheDev/zwischen/internal/ai"
	"github.com/CosmoTheDev/zwischen/internal/config"
	"github.com/CosmoTheDev/zwischen/internal/hooks"
	"github.com/CosmoTheDev/zwischen/internal/scanner"
)

var installTools bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check scanner tools, configuration and AI settings",
	Long: `Checks that gitleaks and semgrep (or opengrep) can be found, validates
.zwischen.yml, and reports the AI provider and pre-push hook state.

Use --install-tools to download gitleaks into ~/.zwischen/bin when missing.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&installTools, "install-tools", false,
		"download gitleaks if it is missing")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}

	allOK := true

	fmt.Println("=== zwischen doctor ===")
	fmt.Println()

	// Config
	fmt.Print("Config ................... ")
	cfg, loadErr := config.Load(cwd, cfgFile)
	switch {
	case loadErr != nil && !errors.Is(loadErr, config.ErrMalformedConfig):
		return fmt.Errorf("loading config: %w", loadErr)
	case loadErr != nil:
		fmt.Println(failStyle.Render(fmt.Sprintf("FAIL (%s; using defaults)", loadErr)))
		allOK = false
	case cfg.Path() == "":
		fmt.Println("defaults (no " + config.DefaultConfigFile + "; run 'zwischen init')")
	default:
		fmt.Printf("OK (%s)\n", cfg.Path())
	}
	for _, problem := range config.Validate(cfg) {
		fmt.Println(warnStyle.Render("  WARN " + problem))
		allOK = false
	}

	// AI
	fmt.Print("AI provider .............. ")
	if line, ok := describeAI(cfg); ok {
		fmt.Println(line)
	} else {
		fmt.Println(warnStyle.Render(line))
		allOK = false
	}
	fmt.Printf("Blocking severity ........ %s\n", cfg.Blocking.Severity)

	// Hook
	fmt.Print("Pre-push hook ............ ")
	if root, err := hooks.FindRoot(cwd); err != nil {
		fmt.Println("n/a (not a git repository)")
	} else if hooks.IsInstalled(root) {
		fmt.Printf("OK (%s)\n", hooks.Path(root))
	} else {
		fmt.Println(warnStyle.Render("NOT INSTALLED (run 'zwischen init')"))
	}

	// Scanner tools
	fmt.Println()
	fmt.Println("Scanner tools:")
	binDir, err := config.BinDir()
	if err != nil {
		return err
	}
	resolver := scanner.NewResolver(binDir)

	if !checkGitleaks(ctx, cmd, cfg, resolver, binDir) {
		allOK = false
	}
	checkSemgrep(ctx, cfg, resolver)

	fmt.Println()
	if allOK {
		fmt.Println(successStyle.Render("All checks passed. zwischen is ready!"))
	} else {
		fmt.Println(warnStyle.Render("Some checks failed. Run 'zwischen init' or fix the items above."))
	}
	return nil
}

func checkGitleaks(ctx context.Context, cmd *cobra.Command, cfg *config.Config, resolver scanner.Resolver, binDir string) bool {
	fmt.Printf("  %-14s ... ", "gitleaks")
	if !cfg.ScannerEnabled("gitleaks") {
		fmt.Println(dimStyle.Render("disabled in config"))
		return true
	}
	if path, ok := resolver.Resolve("gitleaks"); ok {
		fmt.Printf("OK (%s)%s\n", path, versionSuffix(ctx, path))
		return true
	}
	if !installTools {
		fmt.Println(failStyle.Render("MISSING (install with: zwischen doctor --install-tools)"))
		return false
	}

	fmt.Print("missing, installing... ")
	path, err := downloadGitleaks(cmd, binDir)
	if err != nil {
		fmt.Println(failStyle.Render(fmt.Sprintf("FAIL (%s)", err)))
		fmt.Println(dimStyle.Render("    → " + installHint("gitleaks")))
		return false
	}
	fmt.Printf("done (%s)\n", path)
	return true
}

// checkSemgrep reports semgrep/opengrep. Static analysis is optional, so a
// missing binary does not fail the check.
func checkSemgrep(ctx context.Context, cfg *config.Config, resolver scanner.Resolver) {
	fmt.Printf("  %-14s ... ", "semgrep")
	if !cfg.ScannerEnabled("semgrep") {
		fmt.Println(dimStyle.Render("disabled in config"))
		return
	}
	path, ok := scanner.NewSemgrepScanner(resolver, cfg.SemgrepRuleset()).Binary()
	if !ok {
		fmt.Println(warnStyle.Render("NOT FOUND (optional: " + installHint("semgrep") + ")"))
		return
	}
	fmt.Printf("OK (%s, rules %s)%s\n", path, cfg.SemgrepRuleset(), versionSuffix(ctx, path))
}

func versionSuffix(ctx context.Context, path string) string {
	if v := scanner.ToolVersion(ctx, path); v != "" {
		return " " + dimStyle.Render(v)
	}
	return ""
}

// describeAI summarises the AI settings; false means a problem the user
// should fix.
func describeAI(cfg *config.Config) (string, bool) {
	provider := strings.ToLower(strings.TrimSpace(cfg.AI.Provider))
	if !cfg.AI.Enabled || provider == "" || provider == "none" {
		return "disabled (enable with ai.enabled or 'zwischen scan --ai <provider>')", true
	}

	prePush := "manual scans only"
	if cfg.AI.PrePushEnabled {
		prePush = "manual scans and pre-push"
	}

	if env := ai.CredentialEnv(provider); env != "" {
		if strings.TrimSpace(cfg.AI.APIKey) == "" && strings.TrimSpace(os.Getenv(env)) == "" {
			return fmt.Sprintf("WARN (%s selected but no API key; set %s or ai.api_key)", provider, env), false
		}
		return fmt.Sprintf("OK (%s / %s, %s)", provider, modelFor(cfg, provider), prePush), true
	}

	switch provider {
	case "ollama":
		return fmt.Sprintf("OK (ollama / %s at %s, %s)", modelFor(cfg, provider), cfg.AI.URL, prePush), true
	default:
		return fmt.Sprintf("WARN (unknown provider %q; use %s)", provider, strings.Join(ai.Providers, ", ")), false
	}
}

func modelFor(cfg *config.Config, provider string) string {
	if provider != "ollama" && cfg.AI.Model == config.DefaultModel("ollama") {
		return config.DefaultModel(provider)
	}
	if cfg.AI.Model == "" {
		return config.DefaultModel(provider)
	}
	return cfg.AI.Model
}
