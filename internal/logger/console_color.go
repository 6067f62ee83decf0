package logger

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// colorScheme defines consistent colors for different metric types.
// Green: success/positive metrics
// Red: failure/error metrics
// Yellow: warning/threshold metrics
// Cyan: labels and identifiers
type colorScheme struct {
	success *color.Color
	fail    *color.Color
	warn    *color.Color
	label   *color.Color
	value   *color.Color
}

// newColorScheme creates the standard color scheme for metrics.
func newColorScheme() *colorScheme {
	return &colorScheme{
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
		label:   color.New(color.FgCyan),
		value:   color.New(color.FgWhite),
	}
}

// formatColorizedMetric formats a single metric with colorized label and value.
// Label is colored cyan, value is colored white.
// Format: "label: value"
func formatColorizedMetric(label string, value interface{}, scheme *colorScheme) string {
	labelColored := scheme.label.Sprint(label)
	valueColored := scheme.value.Sprintf("%v", value)
	return fmt.Sprintf("%s: %s", labelColored, valueColored)
}

// formatBatchMetrics formats batch outcome counters with color coding.
// Format: "summarized: N, warnings: N, failed: N"
// Success metrics are colored green, warnings yellow, failures red.
// Zero-valued warning/failure counters render with the plain label color so
// a clean run stays visually quiet.
// Colors are automatically disabled when output is not a TTY via fatih/color's
// built-in detection.
func formatBatchMetrics(summarized, warnings, failed int) string {
	scheme := newColorScheme()
	var parts []string

	labelColored := scheme.success.Sprint("summarized")
	valueColored := scheme.value.Sprintf("%d", summarized)
	parts = append(parts, fmt.Sprintf("%s: %s", labelColored, valueColored))

	if warnings > 0 {
		labelColored = scheme.warn.Sprint("warnings")
		valueColored = scheme.warn.Sprintf("%d", warnings)
		parts = append(parts, fmt.Sprintf("%s: %s", labelColored, valueColored))
	} else {
		parts = append(parts, formatColorizedMetric("warnings", warnings, scheme))
	}

	if failed > 0 {
		labelColored = scheme.fail.Sprint("failed")
		valueColored = scheme.fail.Sprintf("%d", failed)
		parts = append(parts, fmt.Sprintf("%s: %s", labelColored, valueColored))
	} else {
		parts = append(parts, formatColorizedMetric("failed", failed, scheme))
	}

	return strings.Join(parts, ", ")
}

// LogBatchSummary logs batch outcome counters at INFO level.
// Format: "[HH:MM:SS] Batch summary: summarized: 8, warnings: 2, failed: 0"
func (cl *ConsoleLogger) LogBatchSummary(summarized, warnings, failed int) {
	if cl.writer == nil {
		return
	}

	// Batch summary is at INFO level
	if !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	var metrics string
	if cl.colorOutput {
		metrics = formatBatchMetrics(summarized, warnings, failed)
	} else {
		metrics = fmt.Sprintf("summarized: %d, warnings: %d, failed: %d", summarized, warnings, failed)
	}

	cl.writer.Write([]byte(fmt.Sprintf("[%s] Batch summary: %s\n", timestamp(), metrics)))
}

// LogBatchSummary logs batch outcome counters to the run log.
func (fl *FileLogger) LogBatchSummary(summarized, warnings, failed int) {
	if !fl.shouldLog("info") {
		return
	}

	message := fmt.Sprintf("[%s] Batch summary: summarized: %d, warnings: %d, failed: %d\n",
		timestamp(), summarized, warnings, failed)
	fl.writeRunLog(message)
}

// LogBatchSummary is a no-op implementation.
func (n *NoOpLogger) LogBatchSummary(summarized, warnings, failed int) {}
