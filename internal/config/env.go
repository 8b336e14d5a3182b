package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// loadEnvFiles loads environment variables from .env/.env.local files.
// It attempts each supported filename in order and stops at the first
// successfully parsed file. Existing process environment variables are
// not overwritten.
func loadEnvFiles() {
	envPaths := []string{".env", ".env.local"}
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			slog.Warn("Failed to load env file", "path", envPath, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", envPath)
		return
	}
}

// applyEnvOverrides lets deployments override bind and publish settings
// without touching the config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("METRICSHUB_HTTP_HOST"); v != "" {
		cfg.HTTPHost = v
	}
	if v := os.Getenv("METRICSHUB_HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.HTTPPort = port
		} else {
			slog.Warn("Ignoring malformed METRICSHUB_HTTP_PORT", "value", v)
		}
	}
	if v := os.Getenv("METRICSHUB_NATS_URL"); v != "" {
		cfg.Publish.NATSURL = v
	}
}
