package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/CosmoTheDev/zwischen/internal/config"
	"github.com/CosmoTheDev/zwischen/internal/hooks"
)

var uninstallPurge bool

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the zwischen pre-push hook",
	Long: `Removes the pre-push hook installed by 'zwischen init'. Hooks that zwischen
only appended to are left in place.

With --purge, .zwischen.yml and the downloaded tools in ~/.zwischen/bin are
removed as well (after confirmation unless --yes is given).`,
	Args: cobra.NoArgs,
	RunE: runUninstall,
}

var uninstallYes bool

func init() {
	uninstallCmd.Flags().BoolVar(&uninstallPurge, "purge", false, "also remove .zwischen.yml and ~/.zwischen/bin")
	uninstallCmd.Flags().BoolVarP(&uninstallYes, "yes", "y", false, "do not ask for confirmation")
}

func runUninstall(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}

	fmt.Println()
	fmt.Println(headerStyle.Render("  zwischen uninstall"))
	fmt.Println()

	root, err := hooks.FindRoot(cwd)
	switch {
	case err != nil:
		fmt.Println(dimStyle.Render("  ↳ Not a git repository; no hook to remove"))
	default:
		removed, err := hooks.Uninstall(root)
		switch {
		case err != nil:
			fmt.Println(failStyle.Render("  ✗ Failed to remove hook: " + err.Error()))
		case removed:
			fmt.Println(successStyle.Render("  ✓ Removed " + hooks.Path(root)))
		case hooks.IsInstalled(root):
			fmt.Println(warnStyle.Render("  ↳ The zwischen check was appended to your own hook; edit " + hooks.Path(root) + " to remove it"))
		default:
			fmt.Println(dimStyle.Render("  ↳ No zwischen hook found"))
		}
	}

	if uninstallPurge {
		if err := purge(cwd); err != nil {
			return err
		}
	}

	fmt.Println()
	fmt.Println(successStyle.Render("  zwischen uninstalled from this project."))
	fmt.Println()
	return nil
}

func purge(cwd string) error {
	targets := []string{}
	path := config.ConfigPath(cwd, cfgFile)
	if _, err := os.Stat(path); err == nil {
		targets = append(targets, path)
	}
	if binDir, err := config.BinDir(); err == nil {
		if _, err := os.Stat(binDir); err == nil {
			targets = append(targets, binDir)
		}
	}
	if len(targets) == 0 {
		return nil
	}

	for _, target := range targets {
		confirmed := uninstallYes
		if !confirmed {
			err := huh.NewConfirm().
				Title(fmt.Sprintf("Remove %s?", target)).
				Value(&confirmed).
				Run()
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			if err != nil {
				return err
			}
		}
		if !confirmed {
			fmt.Println(dimStyle.Render("  ↳ Kept " + target))
			continue
		}
		if err := os.RemoveAll(target); err != nil {
			fmt.Println(failStyle.Render(fmt.Sprintf("  ✗ Failed to remove %s: %s", target, err)))
			continue
		}
		fmt.Println(successStyle.Render("  ✓ Removed " + target))
	}
	return nil
}
