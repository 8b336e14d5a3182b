// Package provider assembles the metrics registry, the rotation scheduler,
// the HTTP endpoint and the optional dump publisher into one component with
// a single start/stop lifecycle.
package provider

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/metricshub/internal/config"
	"git.home.luguber.info/inful/metricshub/internal/errors"
	"git.home.luguber.info/inful/metricshub/internal/logfields"
	"git.home.luguber.info/inful/metricshub/internal/metrics"
	"git.home.luguber.info/inful/metricshub/internal/publish"
	"git.home.luguber.info/inful/metricshub/internal/scheduler"
	"git.home.luguber.info/inful/metricshub/internal/server/httpserver"
)

// Provider owns the root metrics context and every background component
// serving it. A Provider is built once, started once and stopped once.
type Provider struct {
	mu sync.Mutex

	cfg        *config.Config
	configPath string

	registry *prometheus.Registry
	context  *metrics.Context

	sched          *scheduler.Scheduler
	server         *httpserver.Server
	publisher      *publish.Publisher
	watcher        *configWatcher
	procCollectors []prometheus.Collector
	rotateJob      uuid.UUID
	publishJob     uuid.UUID
	started        bool
}

// New builds a provider from an already validated configuration.
func New(cfg *config.Config) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	registry := prometheus.NewRegistry()
	return &Provider{
		cfg:      cfg,
		registry: registry,
		context:  metrics.NewContext(registry),
	}, nil
}

// NewFromFile loads the configuration file at path. When watch_config is set
// the provider reloads reloadable settings from the same file while running.
func NewFromFile(path string) (*Provider, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	p, err := New(cfg)
	if err != nil {
		return nil, err
	}
	p.configPath = path
	return p, nil
}

// NewFromProperties builds a provider from the flat key/value property
// surface used by embedding applications.
func NewFromProperties(props map[string]string) (*Provider, error) {
	cfg, err := config.FromProperties(props)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

// Start brings up the scheduler, the HTTP endpoint and the publisher. On any
// failure everything already running is torn down again, so a failed Start
// leaves no goroutines or sockets behind.
func (p *Provider) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return errors.New(errors.CategoryLifecycle, errors.SeverityError, "provider already started")
	}

	slog.Info("Starting metrics provider",
		logfields.Host(p.cfg.HTTPHost), logfields.Port(p.cfg.HTTPPort))

	if p.cfg.ExportProcessMetrics {
		if err := p.registerProcessCollectors(); err != nil {
			p.teardownLocked(ctx)
			return err
		}
	}

	sched, err := scheduler.New(p.cfg.ShutdownTimeout())
	if err != nil {
		p.teardownLocked(ctx)
		return errors.StartupFailed("scheduler", err)
	}
	p.sched = sched

	p.rotateJob, err = sched.ScheduleEvery("summary-rotation", p.cfg.RotateInterval(), p.context.RotateSummaries)
	if err != nil {
		p.teardownLocked(ctx)
		return errors.StartupFailed("summary-rotation", err)
	}

	p.server = httpserver.New(p.cfg, p)
	if err := p.server.Start(ctx); err != nil {
		p.teardownLocked(ctx)
		return errors.StartupFailed("http-server", err)
	}

	if p.cfg.Publish.Enabled {
		pub, err := publish.New(p.cfg.Publish, p)
		if err != nil {
			p.teardownLocked(ctx)
			return errors.StartupFailed("publisher", err)
		}
		p.publisher = pub
		p.publishJob, err = sched.ScheduleEvery("dump-publish", p.cfg.PublishInterval(),
			func() { p.publishSamples(pub) })
		if err != nil {
			p.teardownLocked(ctx)
			return errors.StartupFailed("dump-publish", err)
		}
	}

	if p.cfg.WatchConfig && p.configPath != "" {
		watcher, err := newConfigWatcher(p.configPath, p)
		if err != nil {
			slog.Error("cannot start config watcher", logfields.Error(err))
		} else {
			p.watcher = watcher
			if err := watcher.Start(ctx); err != nil {
				slog.Error("cannot start config watcher", logfields.Error(err))
				p.watcher = nil
			}
		}
	}

	sched.Start()
	p.started = true
	slog.Info("Metrics provider started", slog.String("addr", p.server.Addr()))
	return nil
}

// Stop shuts every component down in reverse start order. The scheduler wait
// is bounded by worker_shutdown_timeout_ms, so Stop never hangs on a stuck
// rotation or publish run.
func (p *Provider) Stop(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return nil
	}
	p.started = false

	slog.Info("Stopping metrics provider")
	p.teardownLocked(ctx)
	return nil
}

// teardownLocked stops the scheduler before anything else so no rotation or
// publish tick can fire against a component that is already closed.
func (p *Provider) teardownLocked(ctx context.Context) {
	if p.sched != nil {
		if err := p.sched.Stop(); err != nil {
			slog.Error("cannot stop scheduler", logfields.Error(err))
		}
		p.sched = nil
	}
	if p.watcher != nil {
		p.watcher.Stop()
		p.watcher = nil
	}
	if p.publisher != nil {
		p.publisher.Close()
		p.publisher = nil
	}
	if p.server != nil {
		if err := p.server.Stop(ctx); err != nil {
			slog.Error("cannot stop HTTP server", logfields.Error(err))
		}
		p.server = nil
	}
	for _, c := range p.procCollectors {
		p.registry.Unregister(c)
	}
	p.procCollectors = nil
}

// registerProcessCollectors tracks what it registered so a failed Start can
// unregister again; otherwise the next Start would trip duplicate
// registration on the shared registry.
func (p *Provider) registerProcessCollectors() error {
	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := p.registry.Register(c); err != nil {
			return errors.StartupFailed("process-collectors", err)
		}
		p.procCollectors = append(p.procCollectors, c)
	}
	return nil
}

func (p *Provider) publishSamples(pub *publish.Publisher) {
	if err := pub.Publish(); err != nil {
		slog.Error("cannot publish metrics dump", logfields.Error(err))
	}
}

// RootContext returns the registry callers observe metrics through. The same
// Context is returned for the provider's whole lifetime.
func (p *Provider) RootContext() *metrics.Context {
	return p.context
}

// SampleGauges materializes every gauge callback into the backing registry.
func (p *Provider) SampleGauges() {
	p.context.SampleGauges()
}

// Dump samples all gauges and then walks every current sample, one call per
// series. Summary quantiles of an empty window surface as NaN.
func (p *Provider) Dump(sink metrics.SampleSink) {
	p.context.SampleGauges()
	metrics.DumpSamples(p.registry, sink)
}

// Gatherer exposes the backing registry for custom serialization paths.
func (p *Provider) Gatherer() prometheus.Gatherer {
	return p.registry
}

// Handler returns the HTTP routes without binding a listener. Intended for
// embedding the endpoint into an existing server.
func (p *Provider) Handler() http.Handler {
	return httpserver.New(p.cfg, p).Handler()
}

// ResetAll is accepted for interface compatibility and does nothing. Counter
// and summary state is cumulative for the process lifetime.
func (p *Provider) ResetAll() {
	slog.Debug("ResetAll is a no-op")
}

// Reconfigure applies the reloadable subset of a new configuration to the
// running provider. Bind address and collector settings need a restart and
// only produce a warning when changed.
func (p *Provider) Reconfigure(newCfg *config.Config) error {
	if err := newCfg.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		p.cfg = newCfg
		return nil
	}

	if newCfg.HTTPHost != p.cfg.HTTPHost || newCfg.HTTPPort != p.cfg.HTTPPort {
		slog.Warn("bind address change requires a restart",
			logfields.Host(newCfg.HTTPHost), logfields.Port(newCfg.HTTPPort))
	}
	if newCfg.ExportProcessMetrics != p.cfg.ExportProcessMetrics {
		slog.Warn("export_process_metrics change requires a restart")
	}

	if newCfg.SummaryRotateSeconds != p.cfg.SummaryRotateSeconds {
		id, err := p.sched.UpdateInterval(p.rotateJob, "summary-rotation",
			newCfg.RotateInterval(), p.context.RotateSummaries)
		if err != nil {
			return err
		}
		p.rotateJob = id
	}

	if p.publisher != nil && newCfg.Publish.Enabled &&
		newCfg.Publish.IntervalSeconds != p.cfg.Publish.IntervalSeconds {
		pub := p.publisher
		id, err := p.sched.UpdateInterval(p.publishJob, "dump-publish",
			newCfg.PublishInterval(), func() { p.publishSamples(pub) })
		if err != nil {
			return err
		}
		p.publishJob = id
	}

	p.cfg = newCfg
	slog.Info("Configuration reloaded")
	return nil
}

// Config returns the currently applied configuration.
func (p *Provider) Config() *config.Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}
