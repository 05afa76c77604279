// ============================================================================
// gopool Config - YAML Configuration Loading
// ============================================================================
//
// Package: internal/config
// File: config.go
// Purpose: Load and validate the YAML configuration consumed by cmd/gopool
//
// ============================================================================

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ChuLiYu/gopool/pkg/gopool"
)

// Config is the top-level configuration file shape for the gopool CLI.
type Config struct {
	Pool struct {
		Mode          string `yaml:"mode"`
		InitialSize   int    `yaml:"initial_size"`
		MaxWorkers    int    `yaml:"max_workers"`
		QueueCapacity int    `yaml:"queue_capacity"`
	} `yaml:"pool"`

	Metrics struct {
		Enabled      bool          `yaml:"enabled"`
		Port         int           `yaml:"port"`
		PollInterval time.Duration `yaml:"poll_interval"`
	} `yaml:"metrics"`
}

// Default returns a Config populated with spec-aligned defaults. Load starts
// from these values, so a file that omits a field or section keeps them.
func Default() Config {
	var c Config
	c.Pool.Mode = "fixed"
	c.Pool.InitialSize = 0 // 0 -> runtime.NumCPU(), resolved by gopool.Start
	c.Pool.MaxWorkers = 1024
	c.Pool.QueueCapacity = 1024
	c.Metrics.Enabled = false
	c.Metrics.Port = 9090
	c.Metrics.PollInterval = time.Second
	return c
}

// Load reads and parses a YAML config file at path, keeping Default()'s
// value for any field the file does not set. A field the file sets
// explicitly, even to zero, takes the file's value. A missing file is an
// error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("gopool: read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("gopool: parse config %q: %w", path, err)
	}
	return cfg, nil
}

// Mode resolves the configured mode string to a gopool.Mode, defaulting to
// Fixed for an unrecognized or empty value.
func (c Config) Mode() gopool.Mode {
	if c.Pool.Mode == "cached" {
		return gopool.Cached
	}
	return gopool.Fixed
}

// Validate reports a descriptive error for configuration values the Pool
// cannot act on, rather than letting a zero or negative value silently
// produce a pool with no capacity.
func (c Config) Validate() error {
	if c.Pool.QueueCapacity <= 0 {
		return fmt.Errorf("gopool: pool.queue_capacity must be positive, got %d", c.Pool.QueueCapacity)
	}
	if c.Pool.MaxWorkers <= 0 {
		return fmt.Errorf("gopool: pool.max_workers must be positive, got %d", c.Pool.MaxWorkers)
	}
	if c.Metrics.Enabled && c.Metrics.Port <= 0 {
		return fmt.Errorf("gopool: metrics.port must be positive when metrics.enabled is true, got %d", c.Metrics.Port)
	}
	return nil
}
