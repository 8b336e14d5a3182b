package config

import (
	"log/slog"
	"strconv"

	"git.home.luguber.info/inful/metricshub/internal/errors"
)

// Flat property keys recognized on the embedding surface. Embedding
// applications hand the provider a flat string map rather than a YAML file.
const (
	PropHTTPHost                = "httpHost"
	PropHTTPPort                = "httpPort"
	PropExportJVMInfo           = "exportJvmInfo"
	PropWorkerShutdownTimeoutMS = "workerShutdownTimeoutMs"
	PropSummaryRotateSeconds    = "prometheusMetricsSummaryRotateSeconds"

	// Deprecated keys, recognized but ignored. Summary reporting no longer
	// uses a worker pool, so these have no effect.
	PropNumWorkerThreads = "numWorkerThreads"
	PropMaxQueueSize     = "maxQueueSize"
)

// FromProperties builds a configuration from a flat key/value map on top of
// the defaults. Unknown keys are ignored; deprecated keys are warned about;
// malformed numeric values are configuration errors.
func FromProperties(props map[string]string) (*Config, error) {
	cfg := Default()

	if v, ok := props[PropHTTPHost]; ok {
		cfg.HTTPHost = v
	}
	if v, ok := props[PropHTTPPort]; ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.ConfigParseFailed(PropHTTPPort, v, err)
		}
		cfg.HTTPPort = port
	}
	if v, ok := props[PropExportJVMInfo]; ok {
		// Lenient boolean: anything that is not "true" disables the export.
		cfg.ExportProcessMetrics = v == "true"
	}
	if v, ok := props[PropWorkerShutdownTimeoutMS]; ok {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, errors.ConfigParseFailed(PropWorkerShutdownTimeoutMS, v, err)
		}
		cfg.WorkerShutdownTimeoutMS = ms
	}
	if v, ok := props[PropSummaryRotateSeconds]; ok {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.ConfigParseFailed(PropSummaryRotateSeconds, v, err)
		}
		cfg.SummaryRotateSeconds = secs
	}

	if _, ok := props[PropNumWorkerThreads]; ok {
		slog.Warn("Deprecated configuration key is ignored", "key", PropNumWorkerThreads)
	}
	if _, ok := props[PropMaxQueueSize]; ok {
		slog.Warn("Deprecated configuration key is ignored", "key", PropMaxQueueSize)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
