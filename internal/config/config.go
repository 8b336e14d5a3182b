// Package config loads and validates the metricshub configuration from a
// YAML file, from environment overrides, and from the flat key/value
// property surface exposed to embedding applications.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/metricshub/internal/errors"
)

// Config represents the application configuration.
type Config struct {
	// HTTPHost is the bind address of the metrics HTTP endpoint.
	HTTPHost string `yaml:"http_host"`
	// HTTPPort is the port of the metrics HTTP endpoint.
	HTTPPort int `yaml:"http_port"`
	// ExportProcessMetrics enables the Go runtime and process collectors.
	ExportProcessMetrics bool `yaml:"export_process_metrics"`
	// WorkerShutdownTimeoutMS bounds the wait for the rotation worker on stop.
	WorkerShutdownTimeoutMS int64 `yaml:"worker_shutdown_timeout_ms"`
	// SummaryRotateSeconds is the summary sliding-window rotation interval.
	SummaryRotateSeconds int `yaml:"summary_rotate_seconds"`
	// MaxConnections caps concurrent connections on the metrics listener.
	MaxConnections int `yaml:"max_connections"`
	// WatchConfig enables live reload of reloadable settings from the config file.
	WatchConfig bool `yaml:"watch_config"`

	Publish PublishConfig `yaml:"publish"`
}

// PublishConfig configures the optional push-based dump publisher.
type PublishConfig struct {
	Enabled         bool   `yaml:"enabled"`
	NATSURL         string `yaml:"nats_url"`
	Subject         string `yaml:"subject"`
	IntervalSeconds int    `yaml:"interval_seconds"`
}

// Default returns a configuration populated with the documented defaults.
func Default() *Config {
	return &Config{
		HTTPHost:                "0.0.0.0",
		HTTPPort:                7000,
		ExportProcessMetrics:    true,
		WorkerShutdownTimeoutMS: 1000,
		SummaryRotateSeconds:    60,
		MaxConnections:          64,
		Publish: PublishConfig{
			Subject:         "metrics.dump",
			IntervalSeconds: 60,
		},
	}
}

// Load reads a YAML configuration file on top of the defaults. Env files and
// environment overrides are applied after the file so deployments can adjust
// a packaged config without editing it.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(configPath)
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	loadEnvFiles()
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the provider cannot start with.
func (c *Config) Validate() error {
	if c.HTTPHost == "" {
		return errors.ValidationFailed("http_host", "must not be empty")
	}
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return errors.ValidationFailed("http_port", fmt.Sprintf("port %d out of range", c.HTTPPort))
	}
	if c.SummaryRotateSeconds <= 0 {
		return errors.ValidationFailed("summary_rotate_seconds", "must be positive")
	}
	if c.WorkerShutdownTimeoutMS < 0 {
		return errors.ValidationFailed("worker_shutdown_timeout_ms", "must not be negative")
	}
	if c.MaxConnections < 1 {
		return errors.ValidationFailed("max_connections", "must be at least 1")
	}
	if c.Publish.Enabled {
		if c.Publish.NATSURL == "" {
			return errors.ValidationFailed("publish.nats_url", "required when publish is enabled")
		}
		if c.Publish.Subject == "" {
			return errors.ValidationFailed("publish.subject", "required when publish is enabled")
		}
		if c.Publish.IntervalSeconds <= 0 {
			return errors.ValidationFailed("publish.interval_seconds", "must be positive")
		}
	}
	return nil
}

// RotateInterval returns the summary rotation interval as a duration.
func (c *Config) RotateInterval() time.Duration {
	return time.Duration(c.SummaryRotateSeconds) * time.Second
}

// ShutdownTimeout returns the rotation worker shutdown bound as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.WorkerShutdownTimeoutMS) * time.Millisecond
}

// PublishInterval returns the dump publish interval as a duration.
func (c *Config) PublishInterval() time.Duration {
	return time.Duration(c.Publish.IntervalSeconds) * time.Second
}
