// Package main provides the entry point for the pulith CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/pulith/cmd/pulith/commands"
)

// buildVersion, buildCommit, and buildDate are overridden via -ldflags at
// release build time; the default values below are what `go run` and local
// builds report.
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

var (
	configPath string
	debugTrace bool
	logJSON    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pulith",
		Short: "pulith - a cross-platform tool and runtime manager",
		Long: `pulith installs, verifies, and activates versioned tool and
runtime builds through one pipeline: fetch, verify, extract, stage,
transform, activate, commit (with rollback on failure).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to pulith config file")
	rootCmd.PersistentFlags().BoolVar(&debugTrace, "debug-trace", false, "sample every trace span")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit JSON-formatted logs")

	rootCmd.AddCommand(commands.NewInstallCommand(&configPath, &debugTrace, &logJSON))
	rootCmd.AddCommand(commands.NewListCommand(&configPath))
	rootCmd.AddCommand(commands.NewStatusCommand(&configPath))
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "pulith %s (commit: %s, built: %s)\n", buildVersion, buildCommit, buildDate)
		},
	}
}
