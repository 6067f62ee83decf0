package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sgtlab/sessqc/internal/config"
	"github.com/sgtlab/sessqc/internal/logger"
)

// runLogger is the logging surface the subcommands write to. ConsoleLogger,
// FileLogger and NoOpLogger all satisfy it.
type runLogger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	LogProgress(completed, total int)
	LogBatchSummary(summarized, warnings, failed int)
}

// loadRunConfig loads configuration honoring the --config flag.
func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	if configPath != "" {
		// Load from explicit config path
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
		return cfg, nil
	}

	// Load from default .sessqc/config.yaml
	cfg, err := config.LoadConfigFromDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// applyFlagOverrides merges the output flags into the configuration so CLI
// flags take precedence over config file settings.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	// Build flag pointers for merge (only values the user set)
	var outDirPtr *string
	if cmd.Flags().Changed("out") {
		outDir, _ := cmd.Flags().GetString("out")
		outDirPtr = &outDir
	}

	var dpiPtr *int
	if cmd.Flags().Changed("dpi") {
		dpi, _ := cmd.Flags().GetInt("dpi")
		dpiPtr = &dpi
	}

	var rowsPtr *int
	if cmd.Flags().Changed("rows-per-page") {
		rows, _ := cmd.Flags().GetInt("rows-per-page")
		rowsPtr = &rows
	}

	cfg.MergeWithFlags(outDirPtr, dpiPtr, rowsPtr)
}

// effectiveLogLevel applies the verbosity flags on top of the configured
// level. --verbose wins over --quiet.
func effectiveLogLevel(cmd *cobra.Command, cfg *config.Config) string {
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")

	switch {
	case verbose:
		return "debug"
	case quiet:
		return "error"
	default:
		return cfg.LogLevel
	}
}

// newRunLogger creates the console logger for real-time progress and the
// file logger for the detailed run log, combined into one logger. The
// returned closer finishes the run log.
func newRunLogger(cmd *cobra.Command, cfg *config.Config) (runLogger, func(), error) {
	logLevel := effectiveLogLevel(cmd, cfg)

	consoleLog := logger.NewConsoleLogger(cmd.OutOrStdout(), logLevel)

	logDir := cfg.LogDir
	if logDir == "" {
		var err error
		logDir, err = config.GetLogDir()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resolve log directory: %w", err)
		}
	}
	fileLog, err := logger.NewFileLoggerWithDirAndLevel(logDir, logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create file logger: %w", err)
	}

	multiLog := &multiLogger{loggers: []runLogger{consoleLog, fileLog}}
	return multiLog, func() { fileLog.Close() }, nil
}

// multiLogger implements runLogger by delegating to multiple loggers
type multiLogger struct {
	loggers []runLogger
}

// LogTrace forwards to all loggers
func (ml *multiLogger) LogTrace(message string) {
	for _, logger := range ml.loggers {
		logger.LogTrace(message)
	}
}

// LogDebug forwards to all loggers
func (ml *multiLogger) LogDebug(message string) {
	for _, logger := range ml.loggers {
		logger.LogDebug(message)
	}
}

// LogInfo forwards to all loggers
func (ml *multiLogger) LogInfo(message string) {
	for _, logger := range ml.loggers {
		logger.LogInfo(message)
	}
}

// LogWarn forwards to all loggers
func (ml *multiLogger) LogWarn(message string) {
	for _, logger := range ml.loggers {
		logger.LogWarn(message)
	}
}

// LogError forwards to all loggers
func (ml *multiLogger) LogError(message string) {
	for _, logger := range ml.loggers {
		logger.LogError(message)
	}
}

// LogProgress forwards to all loggers
func (ml *multiLogger) LogProgress(completed, total int) {
	for _, logger := range ml.loggers {
		logger.LogProgress(completed, total)
	}
}

// LogBatchSummary forwards to all loggers
func (ml *multiLogger) LogBatchSummary(summarized, warnings, failed int) {
	for _, logger := range ml.loggers {
		logger.LogBatchSummary(summarized, warnings, failed)
	}
}
