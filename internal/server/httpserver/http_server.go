// Package httpserver exposes the metrics registry over HTTP: the Prometheus
// scrape endpoint, a health probe, and an admin dump endpoint.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/netutil"

	"git.home.luguber.info/inful/metricshub/internal/config"
	derrors "git.home.luguber.info/inful/metricshub/internal/errors"
	"git.home.luguber.info/inful/metricshub/internal/logfields"
	"git.home.luguber.info/inful/metricshub/internal/metrics"
	smw "git.home.luguber.info/inful/metricshub/internal/server/middleware"
	"git.home.luguber.info/inful/metricshub/internal/server/responses"
	"git.home.luguber.info/inful/metricshub/internal/version"
)

// Runtime is the surface the server needs from the provider: the registry's
// gauge sampling pass, the dump pass, and the backing gatherer.
type Runtime interface {
	SampleGauges()
	Dump(sink metrics.SampleSink)
	Gatherer() prometheus.Gatherer
}

// Server serves /metrics, /healthz and /admin/metrics on one listener.
type Server struct {
	cfg     *config.Config
	runtime Runtime

	srv       *http.Server
	addr      string
	startedAt time.Time

	errorAdapter *derrors.HTTPErrorAdapter
	mchain       func(http.Handler) http.Handler
}

// New constructs a server around the given runtime. Nothing is bound until
// Start.
func New(cfg *config.Config, runtime Runtime) *Server {
	logger := slog.Default()
	return &Server{
		cfg:          cfg,
		runtime:      runtime,
		errorAdapter: derrors.NewHTTPErrorAdapter(logger),
		mchain:       smw.Chain(logger, derrors.NewHTTPErrorAdapter(logger)),
	}
}

// Handler returns the full route set wrapped in the middleware chain.
// Exposed so tests can drive the server without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.metricsHandler())
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/admin/metrics", s.handleDump)
	return s.mchain(mux)
}

// metricsHandler serves the exposition format, sampling every gauge on the
// request path first so callback metrics reflect current values. Sampling
// must stay synchronous with serialization; only an unregister racing the
// scrape may yield one final stale read.
func (s *Server) metricsHandler() http.Handler {
	promHandler := promhttp.HandlerFor(s.runtime.Gatherer(), promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.runtime.SampleGauges()
		promHandler.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorAdapter.WriteErrorResponse(w, r,
			derrors.ValidationFailed("method", "only GET is allowed"))
		return
	}
	writeJSON(w, http.StatusOK, &responses.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
		Uptime:    time.Since(s.startedAt).Seconds(),
	})
}

func (s *Server) handleDump(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorAdapter.WriteErrorResponse(w, r,
			derrors.ValidationFailed("method", "only GET is allowed"))
		return
	}
	samples := make(map[string]float64)
	s.runtime.Dump(func(key string, value float64) {
		// JSON cannot carry NaN; empty-window quantiles are omitted here.
		if math.IsNaN(value) {
			return
		}
		samples[key] = value
	})
	writeJSON(w, http.StatusOK, &responses.DumpResponse{
		Timestamp: time.Now().UTC(),
		Samples:   samples,
	})
}

// Start pre-binds the listener so startup fails fast on address errors, then
// serves in the background. The listener caps concurrent connections.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.HTTPHost, s.cfg.HTTPPort)
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return derrors.StartupFailed("http", fmt.Errorf("bind %s: %w", addr, err))
	}
	ln = netutil.LimitListener(ln, s.cfg.MaxConnections)

	s.addr = ln.Addr().String()
	s.startedAt = time.Now()
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server error", logfields.Error(err))
		}
	}()

	slog.Info("Metrics HTTP endpoint started",
		logfields.Host(s.cfg.HTTPHost), logfields.Port(s.cfg.HTTPPort))
	return nil
}

// Stop gracefully shuts the server down within the context's deadline.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("metrics server shutdown: %w", err)
	}
	slog.Info("Metrics HTTP endpoint stopped")
	return nil
}

// Addr returns the bound listener address, valid after Start.
func (s *Server) Addr() string {
	return s.addr
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to write JSON response", logfields.Error(err))
	}
}
