package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/sgtlab/sessqc/internal/filelock"
	"github.com/sgtlab/sessqc/internal/report"
)

// lockFileName guards an output directory against concurrent batch runs.
const lockFileName = ".sessqc.lock"

// NewPlotCommand creates the plot command
func NewPlotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot <animal-folder>",
		Short: "Render comparison figures across an animal's sessions",
		Long: `Load every .sdb session bundle under an animal folder, order the
sessions by the subject, date, protocol and day number in their file
names, and render per-field comparison figures: one panel column per
statistic (mean, max, min, std, nan_count), one row per recorded
column, the session index on the x axis, and a file legend at the
bottom of each page.

Pages are written as PNG files to the output directory. A relative
output directory is placed inside the animal folder, so the default
"summary" ends up next to the bundles. The output directory is locked
for the duration of the run; a second run against the same directory
waits up to lock_timeout and then fails.

Examples:
  # Figures for every session under data/vgat24
  sessqc plot data/vgat24

  # Screen-resolution pages in a custom directory
  sessqc plot --out /tmp/figures --dpi 72 data/vgat24

  # Denser pages
  sessqc plot --rows-per-page 14 data/vgat24`,
		Args: cobra.ExactArgs(1),
		RunE: plotCommand,
	}

	// Add flags
	cmd.Flags().String("out", "", "Figure output directory (default \"summary\" inside the animal folder)")
	cmd.Flags().Int("dpi", 0, "Raster resolution of figure pages")
	cmd.Flags().Int("rows-per-page", 0, "Feature rows per figure page")

	return cmd
}

// plotCommand implements the plot command logic
func plotCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	folder := args[0]
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

	written, err := report.PlotWithinAnimal(folder, report.PlotOptions{
		OutDir:      outDir,
		DPI:         cfg.Plot.DPI,
		RowsPerPage: cfg.Plot.RowsPerPage,
		WidthIn:     cfg.Plot.WidthIn,
		HeightIn:    cfg.Plot.HeightIn,
	}, log)
	if err != nil {
		return err
	}

	log.LogInfo(fmt.Sprintf("wrote %d figure page(s) to %s", len(written), outDir))
	return nil
}

// resolveOutDir places the output directory: relative paths live inside the
// animal folder, absolute paths are used as given.
func resolveOutDir(folder, outDir string) string {
	if filepath.IsAbs(outDir) {
		return outDir
	}
	return filepath.Join(folder, outDir)
}

// lockOutDir takes the lock that keeps two runs from interleaving pages in
// one output directory. The returned func releases the lock and removes the
// lock file.
func lockOutDir(outDir string, timeout time.Duration) (func(), error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	lockPath := filepath.Join(outDir, lockFileName)
	lock := filelock.NewFileLock(lockPath)

	var err error
	if timeout > 0 {
		err = lock.LockWithTimeout(timeout)
	} else {
		err = lock.Lock()
	}
	if err != nil {
		return nil, err
	}

	return func() {
		lock.Unlock()
		os.Remove(lockPath)
	}, nil
}
