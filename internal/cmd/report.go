package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sgtlab/sessqc/internal/report"
)

// NewReportCommand creates the report command
func NewReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <animal-folder>",
		Short: "Render figures and an HTML session report for an animal",
		Long: `Load every .sdb session bundle under an animal folder, render the same
comparison figures as the plot command, and write an HTML report that
lists each session's metadata, renders its markdown notes, and embeds
the figure pages.

The report is written as <animal>_report.html in the output directory,
next to the figure pages.

Examples:
  # Report for every session under data/vgat24
  sessqc report data/vgat24

  # Report in a custom directory
  sessqc report --out /tmp/qc data/vgat24`,
		Args: cobra.ExactArgs(1),
		RunE: reportCommand,
	}

	// Add flags
	cmd.Flags().String("out", "", "Report output directory (default \"summary\" inside the animal folder)")
	cmd.Flags().Int("dpi", 0, "Raster resolution of figure pages")
	cmd.Flags().Int("rows-per-page", 0, "Feature rows per figure page")

	return cmd
}

// reportCommand implements the report command logic
func reportCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	folder := args[0]
	animal := filepath.Base(filepath.Clean(folder))
	outDir := resolveOutDir(folder, cfg.OutDir)

	log, closeLog, err := newRunLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	unlock, err := lockOutDir(outDir, cfg.LockTimeout)
	if err != nil {
		return err
	}
	defer unlock()

	names, sessions, err := report.LoadAnimalSessions(folder, log)
	if err != nil {
		return err
	}

	figures, err := report.PlotSessions(animal, names, sessions, report.PlotOptions{
		OutDir:      outDir,
		DPI:         cfg.Plot.DPI,
		RowsPerPage: cfg.Plot.RowsPerPage,
		WidthIn:     cfg.Plot.WidthIn,
		HeightIn:    cfg.Plot.HeightIn,
	}, log)
	if err != nil {
		return err
	}

	htmlPath := filepath.Join(outDir, animal+"_report.html")
	if err := report.WriteHTMLReport(animal, names, sessions, figures, htmlPath); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	log.LogInfo(fmt.Sprintf("saved %s", htmlPath))

	return nil
}
