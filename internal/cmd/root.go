package cmd

import (
	"github.com/spf13/cobra"
)

// Version is the sessqc version, injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates the root command with all subcommands attached
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sessqc",
		Short: "Quality-control summaries for session bundles",
		Long: `sessqc extracts the recorded data of .sdb session bundles and reports
per-column statistics: text summaries per session, comparison figures
across an animal's sessions, and an HTML session report.

Configuration is loaded from .sessqc/config.yaml if present.
CLI flags override configuration file settings.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: .sessqc/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Show debug output")
	rootCmd.PersistentFlags().Bool("quiet", false, "Only report errors")

	rootCmd.AddCommand(NewCheckCommand(), NewPlotCommand(), NewReportCommand())

	return rootCmd
}
