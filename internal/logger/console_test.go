package logger

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"
)

// TestNewConsoleLogger verifies the constructor creates a ConsoleLogger with the provided writer.
func TestNewConsoleLogger(t *testing.T) {
	t.Run("with valid writer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewConsoleLogger(buf, "info")

		if logger == nil {
			t.Error("expected non-nil logger")
		}
		if logger.writer != buf {
			t.Error("writer not set correctly")
		}
		if logger.logLevel != "info" {
			t.Errorf("expected log level %q, got %q", "info", logger.logLevel)
		}
	})

	t.Run("with nil writer", func(t *testing.T) {
		logger := NewConsoleLogger(nil, "info")
		if logger == nil {
			t.Error("expected non-nil logger even with nil writer")
		}
		if logger.writer != nil {
			t.Error("expected nil writer")
		}

		// No panics on any method with nil writer
		logger.LogTrace("trace")
		logger.LogDebug("debug")
		logger.LogInfo("info")
		logger.LogWarn("warn")
		logger.LogError("error")
		logger.LogProgress(1, 2)
		logger.LogBatchSummary(1, 0, 0)
	})

	t.Run("invalid level defaults to info", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewConsoleLogger(buf, "noisy")
		if logger.logLevel != "info" {
			t.Errorf("expected default level info, got %q", logger.logLevel)
		}
	})
}

// TestConsoleLoggerFormat verifies the "[HH:MM:SS] [LEVEL] message" output format.
func TestConsoleLoggerFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "trace")

	logger.LogInfo("loaded session bundle")

	output := buf.String()
	pattern := regexp.MustCompile(`^\[\d{2}:\d{2}:\d{2}\] \[INFO\] loaded session bundle\n$`)
	if !pattern.MatchString(output) {
		t.Errorf("output %q does not match expected format", output)
	}
}

// TestConsoleLoggerLevelFiltering verifies that messages below the configured
// level are suppressed and messages at or above it pass through.
func TestConsoleLoggerLevelFiltering(t *testing.T) {
	tests := []struct {
		name            string
		configuredLevel string
		logFunc         string
		expectOutput    bool
	}{
		{"trace level logs trace", "trace", "trace", true},
		{"trace level logs error", "trace", "error", true},
		{"debug level suppresses trace", "debug", "trace", false},
		{"debug level logs debug", "debug", "debug", true},
		{"info level suppresses debug", "info", "debug", false},
		{"info level logs info", "info", "info", true},
		{"info level logs warn", "info", "warn", true},
		{"warn level suppresses info", "warn", "info", false},
		{"warn level logs warn", "warn", "warn", true},
		{"warn level logs error", "warn", "error", true},
		{"error level suppresses warn", "error", "warn", false},
		{"error level logs error", "error", "error", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := NewConsoleLogger(buf, tt.configuredLevel)

			switch tt.logFunc {
			case "trace":
				logger.LogTrace("message")
			case "debug":
				logger.LogDebug("message")
			case "info":
				logger.LogInfo("message")
			case "warn":
				logger.LogWarn("message")
			case "error":
				logger.LogError("message")
			}

			got := buf.Len() > 0
			if got != tt.expectOutput {
				t.Errorf("level %s, message %s: output = %v, want %v (buffer: %q)",
					tt.configuredLevel, tt.logFunc, got, tt.expectOutput, buf.String())
			}
		})
	}
}

// TestNormalizeLogLevel verifies level normalization and defaults.
func TestNormalizeLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"trace", "trace"},
		{"DEBUG", "debug"},
		{"Info", "info"},
		{"  warn  ", "warn"},
		{"ERROR", "error"},
		{"", "info"},
		{"verbose", "info"},
		{"123", "info"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("input=%q", tt.input), func(t *testing.T) {
			got := normalizeLogLevel(tt.input)
			if got != tt.expected {
				t.Errorf("normalizeLogLevel(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestLogLevelToInt verifies numeric ordering of log levels.
func TestLogLevelToInt(t *testing.T) {
	tests := []struct {
		level    string
		expected int
	}{
		{"trace", levelTrace},
		{"debug", levelDebug},
		{"info", levelInfo},
		{"warn", levelWarn},
		{"error", levelError},
		{"unknown", levelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := logLevelToInt(tt.level); got != tt.expected {
				t.Errorf("logLevelToInt(%q) = %d, want %d", tt.level, got, tt.expected)
			}
		})
	}
}

// TestConsoleLoggerLogProgress verifies progress bar output format.
func TestConsoleLoggerLogProgress(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")

	logger.LogProgress(5, 10)

	output := buf.String()
	if !strings.Contains(output, "Progress: [=====     ] 5/10 (50%)") {
		t.Errorf("unexpected progress output: %q", output)
	}
}

// TestConsoleLoggerLogProgressFiltered verifies progress is suppressed above INFO.
func TestConsoleLoggerLogProgressFiltered(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "error")

	logger.LogProgress(5, 10)

	if buf.Len() != 0 {
		t.Errorf("expected no output at error level, got %q", buf.String())
	}
}

// TestConsoleLoggerLogProgressZeroTotal verifies the zero-file edge case.
func TestConsoleLoggerLogProgressZeroTotal(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")

	logger.LogProgress(0, 0)

	output := buf.String()
	if !strings.Contains(output, "0/0") {
		t.Errorf("expected 0/0 counter, got %q", output)
	}
}

// TestNoOpLogger verifies the no-op logger ignores everything without panicking.
func TestNoOpLogger(t *testing.T) {
	logger := NewNoOpLogger()

	logger.LogTrace("trace")
	logger.LogDebug("debug")
	logger.LogInfo("info")
	logger.LogWarn("warn")
	logger.LogError("error")
	logger.LogProgress(3, 7)
	logger.LogBatchSummary(3, 1, 0)
}

// TestConsoleLoggerConcurrentWrites verifies thread safety of leveled logging.
func TestConsoleLoggerConcurrentWrites(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")

	var wg sync.WaitGroup
	numGoroutines := 10
	messagesPerGoroutine := 20

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < messagesPerGoroutine; j++ {
				logger.LogInfo(fmt.Sprintf("goroutine %d message %d", id, j))
			}
		}(i)
	}

	wg.Wait()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	expected := numGoroutines * messagesPerGoroutine
	if len(lines) != expected {
		t.Errorf("expected %d log lines, got %d", expected, len(lines))
	}

	// Each line must be intact, not interleaved
	for _, line := range lines {
		if !strings.Contains(line, "[INFO]") {
			t.Errorf("malformed log line: %q", line)
		}
	}
}
