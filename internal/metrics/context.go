package metrics

import (
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/metricshub/internal/errors"
	"git.home.luguber.info/inful/metricshub/internal/logfields"
)

// labelKey is the single label dimension distinguishing sub-series within
// the "set" metric kinds.
const labelKey = "key"

var labels = []string{labelKey}

// kindMap is a name-keyed store for one metric kind. The constructor passed
// to getOrCreate runs under the map's write lock, so a backend collector is
// constructed at most once per name even under concurrent first access.
type kindMap[T any] struct {
	mu      sync.RWMutex
	entries map[string]T
}

func newKindMap[T any]() *kindMap[T] {
	return &kindMap[T]{entries: make(map[string]T)}
}

func (m *kindMap[T]) get(name string) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[name]
	return v, ok
}

func (m *kindMap[T]) contains(name string) bool {
	_, ok := m.get(name)
	return ok
}

func (m *kindMap[T]) getOrCreate(name string, create func() (T, error)) (T, error) {
	if v, ok := m.get(name); ok {
		return v, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.entries[name]; ok {
		return v, nil
	}
	v, err := create()
	if err != nil {
		var zero T
		return zero, err
	}
	m.entries[name] = v
	return v, nil
}

// replace atomically computes a new entry from the previous one (if any) and
// stores it. Used for gauge re-registration, which threads the previous
// backend collector forward.
func (m *kindMap[T]) replace(name string, compute func(prev T, ok bool) (T, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.entries[name]
	v, err := compute(prev, ok)
	if err != nil {
		return err
	}
	m.entries[name] = v
	return nil
}

func (m *kindMap[T]) remove(name string) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[name]
	if ok {
		delete(m.entries, name)
	}
	return v, ok
}

// snapshot returns the current entries. Iterating a snapshot keeps sampling
// and rotation passes safe against concurrent registration; an entry added
// mid-pass is picked up on the next one.
func (m *kindMap[T]) snapshot() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]T, 0, len(m.entries))
	for _, v := range m.entries {
		out = append(out, v)
	}
	return out
}

// Context is the single mutable store of all live metrics for a process.
// The namespace is intentionally flat: callers encode any hierarchy into the
// metric name itself.
type Context struct {
	registry *prometheus.Registry

	counters    *kindMap[*Counter]
	counterSets *kindMap[*CounterSet]
	gauges      *kindMap[*gaugeWrapper]
	gaugeSets   *kindMap[*gaugeSetWrapper]

	basicSummaries   *kindMap[*Summary]
	summaries        *kindMap[*Summary]
	basicSummarySets *kindMap[*SummarySet]
	summarySets      *kindMap[*SummarySet]
}

// NewContext creates an empty registry backed by the given Prometheus
// registry. The backing registry outlives any one Context and is the single
// source of truth for serialization.
func NewContext(registry *prometheus.Registry) *Context {
	return &Context{
		registry:         registry,
		counters:         newKindMap[*Counter](),
		counterSets:      newKindMap[*CounterSet](),
		gauges:           newKindMap[*gaugeWrapper](),
		gaugeSets:        newKindMap[*gaugeSetWrapper](),
		basicSummaries:   newKindMap[*Summary](),
		summaries:        newKindMap[*Summary](),
		basicSummarySets: newKindMap[*SummarySet](),
		summarySets:      newKindMap[*SummarySet](),
	}
}

// GetCounter returns the counter registered under name, creating it on
// first request.
func (c *Context) GetCounter(name string) (*Counter, error) {
	if name == "" {
		return nil, errors.EmptyMetricName("counter")
	}
	return c.counters.getOrCreate(name, func() (*Counter, error) {
		return newCounter(name, c.registry)
	})
}

// GetCounterSet returns the labelled counter registered under name, creating
// it on first request.
func (c *Context) GetCounterSet(name string) (*CounterSet, error) {
	if name == "" {
		return nil, errors.EmptyMetricName("counter_set")
	}
	return c.counterSets.getOrCreate(name, func() (*CounterSet, error) {
		return newCounterSet(name, c.registry)
	})
}

// RegisterGauge stores fn as the sampling callback for name. If a gauge with
// that name already exists its backing collector is reused and only the
// callback is replaced; components re-registering after a restart therefore
// never see a duplicate-registration failure.
func (c *Context) RegisterGauge(name string, fn GaugeFunc) error {
	if name == "" {
		return errors.EmptyMetricName("gauge")
	}
	if fn == nil {
		return errors.ValidationFailed("gauge", "callback must not be nil")
	}
	return c.gauges.replace(name, func(prev *gaugeWrapper, ok bool) (*gaugeWrapper, error) {
		if !ok {
			prev = nil
		}
		return newGaugeWrapper(name, fn, prev, c.registry)
	})
}

// UnregisterGauge removes the gauge and its backing collector. Unregistering
// a name that was never registered is a no-op.
func (c *Context) UnregisterGauge(name string) {
	if g, ok := c.gauges.remove(name); ok {
		g.unregister(c.registry)
	}
}

// RegisterGaugeSet stores fn as the sampling callback for the labelled gauge
// name, with the same collector-reuse semantics as RegisterGauge.
func (c *Context) RegisterGaugeSet(name string, fn GaugeSetFunc) error {
	if name == "" {
		return errors.EmptyMetricName("gauge_set")
	}
	if fn == nil {
		return errors.ValidationFailed("gauge_set", "callback must not be nil")
	}
	return c.gaugeSets.replace(name, func(prev *gaugeSetWrapper, ok bool) (*gaugeSetWrapper, error) {
		if !ok {
			prev = nil
		}
		return newGaugeSetWrapper(name, fn, prev, c.registry)
	})
}

// UnregisterGaugeSet removes the labelled gauge and its backing collector.
// Unregistering a name that was never registered is a no-op.
func (c *Context) UnregisterGaugeSet(name string) {
	if g, ok := c.gaugeSets.remove(name); ok {
		g.unregister(c.registry)
	}
}

// GetSummary returns the summary registered under name at the given detail
// level, creating it on first request. A name may exist at one detail level
// only; requesting the other level is a configuration error and constructs
// no backend collector.
func (c *Context) GetSummary(name string, level DetailLevel) (*Summary, error) {
	if name == "" {
		return nil, errors.EmptyMetricName("summary")
	}
	target, other := c.summaries, c.basicSummaries
	if level == Basic {
		target, other = c.basicSummaries, c.summaries
	}
	return target.getOrCreate(name, func() (*Summary, error) {
		if other.contains(name) {
			return nil, errors.DetailLevelConflict(name, otherLevel(level).String())
		}
		return newSummary(name, level, c.registry)
	})
}

// GetSummarySet returns the labelled summary registered under name at the
// given detail level, with the same exclusivity rule as GetSummary.
func (c *Context) GetSummarySet(name string, level DetailLevel) (*SummarySet, error) {
	if name == "" {
		return nil, errors.EmptyMetricName("summary_set")
	}
	target, other := c.summarySets, c.basicSummarySets
	if level == Basic {
		target, other = c.basicSummarySets, c.summarySets
	}
	return target.getOrCreate(name, func() (*SummarySet, error) {
		if other.contains(name) {
			return nil, errors.DetailLevelConflict(name, otherLevel(level).String())
		}
		return newSummarySet(name, level, c.registry)
	})
}

func otherLevel(l DetailLevel) DetailLevel {
	if l == Basic {
		return Advanced
	}
	return Basic
}

// SampleGauges synchronously invokes every registered gauge and gauge-set
// callback, materializing current values into the backing collectors. Every
// external read path must call this before serializing.
func (c *Context) SampleGauges() {
	for _, g := range c.gauges.snapshot() {
		g.sample()
	}
	for _, g := range c.gaugeSets.snapshot() {
		g.sample()
	}
}

// RotateSummaries advances the sliding window of every registered summary
// and summary set at both detail levels. Failures are isolated per
// collector; rotation is best-effort and self-healing.
func (c *Context) RotateSummaries() {
	for _, s := range c.summaries.snapshot() {
		rotateIsolated(s.name, s.Rotate)
	}
	for _, s := range c.basicSummaries.snapshot() {
		rotateIsolated(s.name, s.Rotate)
	}
	for _, s := range c.summarySets.snapshot() {
		rotateIsolated(s.name, s.Rotate)
	}
	for _, s := range c.basicSummarySets.snapshot() {
		rotateIsolated(s.name, s.Rotate)
	}
}

func rotateIsolated(name string, rotate func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("cannot rotate summary",
				logfields.Metric(name), slog.Any("panic", r))
		}
	}()
	rotate()
}
