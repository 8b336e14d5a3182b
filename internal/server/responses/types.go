// Package responses defines the JSON payloads served by the admin-facing
// endpoints.
package responses

import "time"

// HealthResponse is served by /healthz.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime_seconds"`
}

// DumpResponse is served by /admin/metrics: a flattened snapshot of every
// sample the backend registry currently holds, keyed by serialized sample
// name.
type DumpResponse struct {
	Timestamp time.Time          `json:"timestamp"`
	Samples   map[string]float64 `json:"samples"`
}
