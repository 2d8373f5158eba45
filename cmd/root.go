package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/CosmoTheDev/zwischen/internal/logging"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	cfgFile string
	verbose bool
	logFile string

	closeLog = func() {}
)

// ErrBlocked is returned when the scan found blocking issues. Execute exits 1
// without printing it; the report already explains why.
var ErrBlocked = errors.New("blocking security issues found")

// rootCmd is the base command. Without a subcommand it runs a scan.
var rootCmd = &cobra.Command{
	Use:   "zwischen",
	Short: "Security checks between you and git push",
	Long: `zwischen runs gitleaks and semgrep over your project, optionally asks an AI
model to triage the findings, and blocks pushes that introduce serious issues.

Get started:
  zwischen init      Create .zwischen.yml and install the pre-push hook
  zwischen doctor    Check scanner tools and AI settings
  zwischen scan      Scan the current project (default)`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		closeLog = logging.Setup(logging.Options{Verbose: verbose, File: logFile})
		slog.Debug("Logging configured", "version", Version)
	},
	RunE: runScan,
}

// Execute is the entry point called from main.go.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	closeLog()

	if err == nil {
		return
	}
	if !errors.Is(err, ErrBlocked) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(1)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./.zwischen.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging (same as ZWISCHEN_DEBUG=1)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to a rotating file instead of stderr")

	addScanFlags(rootCmd)

	rootCmd.Version = Version
	rootCmd.AddCommand(
		scanCmd,
		initCmd,
		doctorCmd,
		uninstallCmd,
		configCmd,
	)
}
