// Package config provides configuration loading and management for surfacesfetus.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// NumCores specifies how many CPU cores per-vertex and per-triangle
		// statistics may use
		NumCores int `yaml:"numCores"`
	} `yaml:"processing"`

	// Triangle quality parameters
	Quality struct {
		// Fence is the interquartile range multiplier for outlier detection
		Fence float64 `yaml:"fence"`

		// Degenerate selects how collinear triangles are handled:
		// "infinite" records +Inf, "reject" fails
		Degenerate string `yaml:"degenerate"`
	} `yaml:"quality"`

	// Distortion angle parameters
	Distortion struct {
		// Mode is one of "default", "ideal" or "error"
		Mode string `yaml:"mode"`
	} `yaml:"distortion"`

	// Vertex mask parameters
	Mask struct {
		// Threshold separates the two labels of a binarized mask
		Threshold float64 `yaml:"threshold"`
	} `yaml:"mask"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`

	// Log parameters
	Log struct {
		// Level is one of debug, info, warn or error
		Level string `yaml:"level"`

		// Format is "console" or "json"
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Processing.NumCores = runtime.NumCPU() // Use all available cores by default

	cfg.Quality.Fence = 1.5
	cfg.Quality.Degenerate = "infinite"

	cfg.Distortion.Mode = "default"

	// interpolated mask values near a border fall between the two labels
	cfg.Mask.Threshold = 0.6

	cfg.Output.Verbose = false

	cfg.Log.Level = "info"
	cfg.Log.Format = "console"

	return cfg
}

// Validate checks the values that have a closed set of choices
func (c *Config) Validate() error {
	if c.Processing.NumCores < 0 {
		return fmt.Errorf("processing.numCores must not be negative, got %d", c.Processing.NumCores)
	}
	if c.Quality.Fence < 0 {
		return fmt.Errorf("quality.fence must not be negative, got %g", c.Quality.Fence)
	}
	switch c.Quality.Degenerate {
	case "infinite", "reject":
	default:
		return fmt.Errorf("quality.degenerate must be infinite or reject, got %q", c.Quality.Degenerate)
	}
	switch c.Distortion.Mode {
	case "default", "ideal", "error":
	default:
		return fmt.Errorf("distortion.mode must be default, ideal or error, got %q", c.Distortion.Mode)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
