package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetHome returns the sessqc state directory, where configuration and run
// logs live.
// Priority order:
//  1. SESSQC_HOME environment variable (if set)
//  2. .sessqc under the current working directory
//
// The directory is created if it doesn't exist.
func GetHome() (string, error) {
	// Try env var first
	if home := os.Getenv("SESSQC_HOME"); home != "" {
		if err := os.MkdirAll(home, 0755); err != nil {
			return "", fmt.Errorf("create sessqc home directory: %w", err)
		}
		return home, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	home := filepath.Join(cwd, ".sessqc")
	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create sessqc home directory: %w", err)
	}

	return home, nil
}

// GetLogDir returns the log directory under the sessqc home.
// The directory is created if it doesn't exist.
func GetLogDir() (string, error) {
	home, err := GetHome()
	if err != nil {
		return "", err
	}

	logDir := filepath.Join(home, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("create log directory: %w", err)
	}

	return logDir, nil
}
