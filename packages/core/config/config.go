package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config represents the domspec configuration.
type Config struct {
	DefaultWaitMs   int      `json:"defaultWait,omitempty"`   // wait budget per assertion, milliseconds
	PollIntervalMs  int      `json:"pollInterval,omitempty"`  // pause between resolution attempts, milliseconds
	FetchTimeoutMs  int      `json:"fetchTimeout,omitempty"`  // single page fetch timeout, milliseconds
	FetchRatePerSec float64  `json:"fetchRate,omitempty"`     // max live-page refetches per second
	Reporters       []string `json:"reporters,omitempty"`     // output reporters
	HistoryPath     string   `json:"historyPath,omitempty"`   // sqlite run-history location
	Bail            *bool    `json:"bail,omitempty"`
	Verbose         *bool    `json:"verbose,omitempty"`
	NoColor         *bool    `json:"noColor,omitempty"`
}

// BoolPtr returns a pointer to a bool value.
func BoolPtr(b bool) *bool {
	return &b
}

func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// DefaultWait returns the process-wide wait budget assertions fall back to
// when a query carries no explicit wait.
func (c *Config) DefaultWait() time.Duration {
	return time.Duration(c.DefaultWaitMs) * time.Millisecond
}

// PollInterval returns the pause between resolution attempts.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// FetchTimeout returns the single-fetch timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMs) * time.Millisecond
}

// GetBail returns the bail setting, defaulting to false.
func (c *Config) GetBail() bool {
	return getBool(c.Bail, false)
}

// GetVerbose returns the verbose setting, defaulting to false.
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetNoColor returns the no color setting, defaulting to false.
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// ConfigFilenames contains the possible config file names.
var ConfigFilenames = []string{
	".domspec.config.json",
	"domspec.config.json",
	".domspecrc",
	".domspecrc.json",
}

// LoadConfig loads configuration from the specified path or searches for
// config files in the current directory.
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory,
// returning defaults when none exists.
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}
	return DefaultConfig(), nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if config.DefaultWaitMs < 0 {
		return nil, fmt.Errorf("defaultWait must be non-negative, got %d", config.DefaultWaitMs)
	}
	if config.PollIntervalMs < 0 {
		return nil, fmt.Errorf("pollInterval must be non-negative, got %d", config.PollIntervalMs)
	}
	return config, nil
}

// Merge merges another config into this one, with other taking precedence.
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c

	if other.DefaultWaitMs > 0 {
		result.DefaultWaitMs = other.DefaultWaitMs
	}
	if other.PollIntervalMs > 0 {
		result.PollIntervalMs = other.PollIntervalMs
	}
	if other.FetchTimeoutMs > 0 {
		result.FetchTimeoutMs = other.FetchTimeoutMs
	}
	if other.FetchRatePerSec > 0 {
		result.FetchRatePerSec = other.FetchRatePerSec
	}
	if len(other.Reporters) > 0 {
		result.Reporters = other.Reporters
	}
	if other.HistoryPath != "" {
		result.HistoryPath = other.HistoryPath
	}
	if other.Bail != nil {
		result.Bail = other.Bail
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}
	return &result
}
