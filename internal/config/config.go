package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// PlotConfig represents figure rendering configuration
type PlotConfig struct {
	// DPI is the raster resolution of generated PNG figures
	DPI int `yaml:"dpi"`

	// RowsPerPage is the number of column rows on one figure page
	RowsPerPage int `yaml:"rows_per_page"`

	// WidthIn is the page width in inches
	WidthIn float64 `yaml:"width_in"`

	// HeightIn is the page height in inches
	HeightIn float64 `yaml:"height_in"`
}

// Config represents sessqc configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs will be written.
	// Empty means the logs directory under the sessqc home.
	LogDir string `yaml:"log_dir"`

	// OutDir is the directory summaries and figures are written to
	OutDir string `yaml:"out_dir"`

	// LockTimeout is how long a run waits for the output directory lock
	// held by a concurrent run (0 = wait forever)
	LockTimeout time.Duration `yaml:"lock_timeout"`

	// Plot contains figure rendering configuration
	Plot PlotConfig `yaml:"plot"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel:    "info",
		LogDir:      "",
		OutDir:      "summary",
		LockTimeout: 30 * time.Second,
		Plot: PlotConfig{
			DPI:         300,
			RowsPerPage: 10,
			WidthIn:     12,
			HeightIn:    15,
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// File doesn't exist, return defaults (not an error)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	// Use a temporary struct to handle duration parsing
	type yamlConfig struct {
		LogLevel    string     `yaml:"log_level"`
		LogDir      string     `yaml:"log_dir"`
		OutDir      string     `yaml:"out_dir"`
		LockTimeout string     `yaml:"lock_timeout"`
		Plot        PlotConfig `yaml:"plot"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}
	if yamlCfg.OutDir != "" {
		cfg.OutDir = yamlCfg.OutDir
	}
	if yamlCfg.LockTimeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.LockTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid lock_timeout format %q: %w", yamlCfg.LockTimeout, err)
		}
		cfg.LockTimeout = timeout
	}

	// Merge plot config - need to check if the section was provided at all,
	// so an explicit zero in the file is distinguishable from an omitted key
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if plotSection, exists := rawMap["plot"]; exists && plotSection != nil {
			plot := yamlCfg.Plot
			plotMap, _ := plotSection.(map[string]interface{})

			if _, exists := plotMap["dpi"]; exists {
				cfg.Plot.DPI = plot.DPI
			}
			if _, exists := plotMap["rows_per_page"]; exists {
				cfg.Plot.RowsPerPage = plot.RowsPerPage
			}
			if _, exists := plotMap["width_in"]; exists {
				cfg.Plot.WidthIn = plot.WidthIn
			}
			if _, exists := plotMap["height_in"]; exists {
				cfg.Plot.HeightIn = plot.HeightIn
			}
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .sessqc/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ".sessqc", "config.yaml")
	return LoadConfig(configPath)
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
// This allows CLI flags to take precedence over config file settings
func (c *Config) MergeWithFlags(outDir *string, dpi *int, rowsPerPage *int) {
	if outDir != nil {
		c.OutDir = *outDir
	}
	if dpi != nil {
		c.Plot.DPI = *dpi
	}
	if rowsPerPage != nil {
		c.Plot.RowsPerPage = *rowsPerPage
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	// Validate log_level
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.OutDir == "" {
		return fmt.Errorf("out_dir cannot be empty")
	}

	// LockTimeout can be 0 (wait forever) or positive, negative is invalid
	if c.LockTimeout < 0 {
		return fmt.Errorf("lock_timeout must be >= 0, got %v", c.LockTimeout)
	}

	if c.Plot.DPI <= 0 {
		return fmt.Errorf("plot.dpi must be > 0, got %d", c.Plot.DPI)
	}
	if c.Plot.RowsPerPage <= 0 {
		return fmt.Errorf("plot.rows_per_page must be > 0, got %d", c.Plot.RowsPerPage)
	}
	if c.Plot.WidthIn <= 0 {
		return fmt.Errorf("plot.width_in must be > 0, got %v", c.Plot.WidthIn)
	}
	if c.Plot.HeightIn <= 0 {
		return fmt.Errorf("plot.height_in must be > 0, got %v", c.Plot.HeightIn)
	}

	return nil
}
