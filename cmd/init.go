package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/CosmoTheDev/zwischen/internal/config"
	"github.com/CosmoTheDev/zwischen/internal/hooks"
	"github.com/CosmoTheDev/zwischen/internal/installer"
	"github.com/CosmoTheDev/zwischen/internal/scanner"
)

var initYes bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up zwischen for this project",
	Long: `Walks you through setting up zwischen in the current repository:
  - downloads gitleaks into ~/.zwischen/bin when it is missing
  - picks an AI provider (optional) and the blocking severity
  - installs the git pre-push hook
  - writes .zwischen.yml (an existing file is never overwritten)

Use --yes to accept the defaults without prompting.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#7C3AED"))

var successStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#10B981"))

var warnStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#F59E0B"))

var failStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#EF4444"))

var dimStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#6B7280"))

func init() {
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "accept defaults without prompting")
}

// initAnswers holds the wizard's choices.
type initAnswers struct {
	provider      string
	model         string
	severity      string
	installHook   bool
	fetchGitleaks bool
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}

	fmt.Println()
	fmt.Println(headerStyle.Render("  zwischen · security checks before every push"))
	fmt.Println()

	binDir, err := config.BinDir()
	if err != nil {
		return err
	}
	resolver := scanner.NewResolver(binDir)
	_, haveGitleaks := resolver.Resolve("gitleaks")

	repoRoot, repoErr := hooks.FindRoot(cwd)

	answers := initAnswers{
		provider:      "ollama",
		severity:      "high",
		installHook:   repoErr == nil,
		fetchGitleaks: !haveGitleaks,
	}
	if !initYes {
		if err := askInit(&answers, haveGitleaks, repoErr == nil); err != nil {
			return err
		}
	}

	// Tools
	if haveGitleaks {
		fmt.Println(successStyle.Render("  ✓ gitleaks available"))
	} else if answers.fetchGitleaks {
		fmt.Println(dimStyle.Render("  ↳ Installing gitleaks..."))
		if path, err := downloadGitleaks(cmd, binDir); err != nil {
			fmt.Println(warnStyle.Render("  ⚠ Could not install gitleaks: " + err.Error()))
			fmt.Println(dimStyle.Render("    → " + installHint("gitleaks")))
		} else {
			fmt.Println(successStyle.Render("  ✓ Installed gitleaks to " + path))
		}
	} else {
		fmt.Println(warnStyle.Render("  ↳ gitleaks not installed"))
		fmt.Println(dimStyle.Render("    → " + installHint("gitleaks")))
	}
	if _, ok := scanner.NewSemgrepScanner(resolver, "").Binary(); ok {
		fmt.Println(successStyle.Render("  ✓ semgrep available"))
	} else {
		fmt.Println(warnStyle.Render("  ↳ semgrep not found (optional)"))
		fmt.Println(dimStyle.Render("    → " + installHint("semgrep")))
	}

	// Hook
	switch {
	case repoErr != nil:
		fmt.Println(warnStyle.Render("  ⚠ Not a git repository. Skipping hook installation."))
	case !answers.installHook:
		fmt.Println(dimStyle.Render("  ↳ Skipping hook installation"))
	default:
		if err := installHook(repoRoot); err != nil {
			fmt.Println(failStyle.Render("  ✗ Failed to install hook: " + err.Error()))
		}
	}

	// Config
	path := config.ConfigPath(cwd, cfgFile)
	created, err := config.WriteExample(path, config.ExampleOptions{
		Provider:         answers.provider,
		Model:            answers.model,
		BlockingSeverity: answers.severity,
	})
	switch {
	case err != nil:
		fmt.Println(failStyle.Render("  ✗ Failed to create config: " + err.Error()))
	case created:
		fmt.Println(successStyle.Render("  ✓ Created " + path))
	default:
		fmt.Println(successStyle.Render("  ✓ Config already exists (" + path + ")"))
	}

	fmt.Println()
	fmt.Println(successStyle.Render("  Done! zwischen will now scan before every push."))
	fmt.Println(dimStyle.Render("  Run 'zwischen scan' to try it now."))
	fmt.Println()
	return nil
}

func askInit(a *initAnswers, haveGitleaks, inRepo bool) error {
	var groups []*huh.Group

	if !haveGitleaks {
		groups = append(groups, huh.NewGroup(
			huh.NewConfirm().
				Title("gitleaks is not installed. Download it to ~/.zwischen/bin?").
				Affirmative("Yes").
				Negative("No").
				Value(&a.fetchGitleaks),
		))
	}

	groups = append(groups, huh.NewGroup(
		huh.NewSelect[string]().
			Title("AI provider").
			Description("Reviews findings, flags false positives and suggests fixes. Optional.").
			Options(
				huh.NewOption("Ollama (local, no key needed)", "ollama"),
				huh.NewOption("OpenAI (OPENAI_API_KEY)", "openai"),
				huh.NewOption("Anthropic (ANTHROPIC_API_KEY)", "anthropic"),
				huh.NewOption("None", "none"),
			).
			Value(&a.provider),
		huh.NewInput().
			Title("Model").
			Description("Leave blank for the provider's default.").
			Value(&a.model),
		huh.NewSelect[string]().
			Title("Block pushes on").
			Options(
				huh.NewOption("High and critical findings", "high"),
				huh.NewOption("Critical findings only", "critical"),
				huh.NewOption("Nothing (report only)", "none"),
			).
			Value(&a.severity),
	))

	if inRepo {
		groups = append(groups, huh.NewGroup(
			huh.NewConfirm().
				Title("Install the git pre-push hook?").
				Value(&a.installHook),
		))
	}

	return huh.NewForm(groups...).Run()
}

// installHook installs the pre-push hook, asking what to do with a foreign
// one. With --yes a foreign hook is backed up.
func installHook(root string) error {
	err := hooks.Install(root)
	if err == nil {
		fmt.Println(successStyle.Render("  ✓ Installed pre-push hook"))
		return nil
	}
	if !errors.Is(err, hooks.ErrForeignHook) {
		return err
	}

	choice := "backup"
	if !initYes {
		fmt.Println(warnStyle.Render("  ⚠ A pre-push hook already exists at " + hooks.Path(root)))
		form := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("What would you like to do?").
				Options(
					huh.NewOption("Back it up and replace it", "backup"),
					huh.NewOption("Append the zwischen check to it", "append"),
					huh.NewOption("Skip hook installation", "skip"),
				).
				Value(&choice),
		))
		if err := form.Run(); err != nil {
			return err
		}
	}

	switch choice {
	case "backup":
		backup, err := hooks.Backup(root)
		if err != nil {
			return err
		}
		if backup != "" {
			fmt.Println(successStyle.Render("  ✓ Backed up existing hook to " + backup))
		}
		fmt.Println(successStyle.Render("  ✓ Installed pre-push hook"))
	case "append":
		if err := hooks.Append(root); err != nil {
			return err
		}
		fmt.Println(successStyle.Render("  ✓ Appended zwischen check to existing hook"))
	default:
		fmt.Println(dimStyle.Render("  ↳ Skipping hook installation"))
	}
	return nil
}

func downloadGitleaks(cmd *cobra.Command, binDir string) (string, error) {
	in, err := installer.New(installer.Options{BinDir: binDir})
	if err != nil {
		return "", err
	}
	return in.InstallGitleaks(cmd.Context())
}

// installHint is the manual install command shown when a tool is missing.
func installHint(tool string) string {
	switch tool {
	case "gitleaks":
		return "zwischen doctor --install-tools, brew install gitleaks, or https://github.com/gitleaks/gitleaks/releases"
	case "semgrep":
		return "pip install semgrep (or pipx install semgrep / brew install semgrep)"
	}
	return ""
}
