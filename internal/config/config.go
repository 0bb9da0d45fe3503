// Package config provides configuration for the timetable exporter.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingBaseURL         = errors.New("base_url is required")
	ErrInvalidTimeout         = errors.New("timeout_sec must be at least 1")
	ErrInvalidRequestInterval = errors.New("request_interval_ms must be non-negative")
)

// Config holds the fetch policy values. Everything has a working default;
// a config file is only needed to point the exporter at a different
// timetable instance or to change the pacing.
type Config struct {
	// BaseURL is the weekly activities endpoint, without a trailing slash.
	BaseURL string `yaml:"base_url"`
	// UserAgent is sent on every request.
	UserAgent string `yaml:"user_agent"`
	// TimeoutSec bounds each HTTP request.
	TimeoutSec int `yaml:"timeout_sec"`
	// RequestIntervalMs is the pacing delay between weekly page fetches.
	RequestIntervalMs int `yaml:"request_interval_ms"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BaseURL:           "https://mytimetable.durham.ac.uk/weekly/activities",
		UserAgent:         "Mozilla/5.0 (X11; Linux x86_64; rv:61.0) Gecko/20100101 Firefox/61.0",
		TimeoutSec:        30,
		RequestIntervalMs: 1000,
	}
}

// Load reads configuration from a YAML file. An empty path returns the
// defaults; a partially-filled file is normalized against them.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize fills zero values with defaults so partial configs behave.
func (c *Config) Normalize() {
	def := Default()
	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	if c.UserAgent == "" {
		c.UserAgent = def.UserAgent
	}
	if c.TimeoutSec == 0 {
		c.TimeoutSec = def.TimeoutSec
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if c.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}
	if c.RequestIntervalMs < 0 {
		return ErrInvalidRequestInterval
	}
	return nil
}

// Timeout returns the per-request HTTP timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// RequestInterval returns the pacing delay between weekly fetches.
func (c *Config) RequestInterval() time.Duration {
	return time.Duration(c.RequestIntervalMs) * time.Millisecond
}
