package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/CosmoTheDev/zwischen/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View zwischen configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration (API key redacted)",
	Long: `Prints the configuration a scan would use: built-in defaults, overlaid with
.zwischen.yml and ZWISCHEN_* environment variables.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolving working directory: %w", err)
		}
		cfg, err := config.Load(cwd, cfgFile)
		if err != nil {
			if !errors.Is(err, config.ErrMalformedConfig) {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render("Warning: "+err.Error()))
		}

		shown := *cfg
		if shown.AI.APIKey != "" {
			shown.AI.APIKey = "***"
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(shown); err != nil {
			return err
		}

		for _, problem := range config.Validate(cfg) {
			fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render("Warning: "+problem))
		}
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the path to the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolving working directory: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), config.ConfigPath(cwd, cfgFile))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configPathCmd)
}
