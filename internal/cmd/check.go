package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sgtlab/sessqc/internal/report"
	"github.com/sgtlab/sessqc/internal/session"
)

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <bundle>...",
		Short: "Write per-field summary statistics for session bundles",
		Long: `Extract the recorded fields of one or more .sdb session bundles and
write a text summary with per-column statistics (mean, std, min, max,
nan_count) next to each bundle.

Task sessions report ROI activity, acquisition channels, the keypoint
tracking views and pupil metrics. Resting-state sessions report the same
fields without trial structure. Sensory stimulation sessions report ROI
activity only. Fields a session does not carry are logged as warnings
and left out of the summary.

Bundles are checked independently: a bundle that fails to load is
counted and reported, and the remaining bundles are still checked.

Examples:
  # Summarize a task session next to the bundle
  sessqc check vgat24_2021-01-05_task-day1.sdb

  # Resting-state session, plus an xlsx workbook of the same numbers
  sessqc check --resting --xlsx vgat24_2021-01-07_resting-state-day1.sdb

  # Batch check (the shell expands the glob)
  sessqc check data/vgat24/*.sdb

  # Custom summary path
  sessqc check --out /tmp/qc.txt vgat24_2021-01-05_task-day1.sdb`,
		Args: cobra.MinimumNArgs(1),
		RunE: checkCommand,
	}

	// Add flags
	cmd.Flags().Bool("resting", false, "Treat the sessions as resting-state recordings")
	cmd.Flags().Bool("sensory", false, "Treat the sessions as sensory stimulation recordings")
	cmd.Flags().String("out", "", "Summary output path (single bundle only)")
	cmd.Flags().Bool("xlsx", false, "Also write each summary as an xlsx workbook")

	return cmd
}

// checkCommand implements the check command logic
func checkCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Get flag values
	resting, _ := cmd.Flags().GetBool("resting")
	sensory, _ := cmd.Flags().GetBool("sensory")
	outPath, _ := cmd.Flags().GetString("out")
	xlsx, _ := cmd.Flags().GetBool("xlsx")

	// Validate conflicting flags
	if resting && sensory {
		return fmt.Errorf("cannot use both --resting and --sensory: %w", session.ErrKindConflict)
	}
	if outPath != "" && len(args) > 1 {
		return fmt.Errorf("--out requires a single bundle, got %d", len(args))
	}

	log, closeLog, err := newRunLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	var summarized, warnings, failed int
	for _, path := range args {
		res, err := report.SanityCheck(path, report.CheckOptions{
			Resting: resting,
			Sensory: sensory,
			OutPath: outPath,
			XLSX:    xlsx,
		}, log)
		if err != nil {
			log.LogError(fmt.Sprintf("check %s: %v", path, err))
			failed++
			continue
		}
		summarized++
		warnings += res.Missing
	}

	log.LogBatchSummary(summarized, warnings, failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d bundle(s) failed", failed, len(args))
	}
	return nil
}
