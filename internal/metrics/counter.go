package metrics

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"git.home.luguber.info/inful/metricshub/internal/errors"
	"git.home.luguber.info/inful/metricshub/internal/logfields"
)

// Counter is a monotonically increasing scalar. Negative deltas are logged
// and dropped; metric calls never disrupt application control flow.
type Counter struct {
	name  string
	inner prometheus.Counter
}

func newCounter(name string, reg prometheus.Registerer) (*Counter, error) {
	inner := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: name})
	if err := reg.Register(inner); err != nil {
		return nil, errors.BackendRegistration(name, err)
	}
	return &Counter{name: name, inner: inner}, nil
}

// Add increments the counter by delta.
func (c *Counter) Add(delta int64) {
	if delta < 0 {
		slog.Error("invalid delta for counter",
			logfields.Metric(c.name), logfields.Delta(delta))
		return
	}
	c.inner.Add(float64(delta))
}

// Get returns the cumulative value truncated to an integer. It exists for
// introspection and tests; the export path serializes the collector directly.
func (c *Counter) Get() int64 {
	var m dto.Metric
	if err := c.inner.Write(&m); err != nil {
		slog.Error("failed to read counter value",
			logfields.Metric(c.name), logfields.Error(err))
		return 0
	}
	return int64(m.GetCounter().GetValue())
}

// CounterSet is a counter with one sub-series per observed key, allocated
// lazily by the backend.
type CounterSet struct {
	name  string
	inner *prometheus.CounterVec
}

func newCounterSet(name string, reg prometheus.Registerer) (*CounterSet, error) {
	inner := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: name}, labels)
	if err := reg.Register(inner); err != nil {
		return nil, errors.BackendRegistration(name, err)
	}
	return &CounterSet{name: name, inner: inner}, nil
}

// Add increments the key's sub-series by delta.
func (c *CounterSet) Add(key string, delta int64) {
	if delta < 0 {
		slog.Error("invalid delta for counter",
			logfields.Metric(c.name), logfields.Key(key), logfields.Delta(delta))
		return
	}
	c.inner.WithLabelValues(key).Add(float64(delta))
}

// Get returns the cumulative value for one key truncated to an integer.
func (c *CounterSet) Get(key string) int64 {
	var m dto.Metric
	if err := c.inner.WithLabelValues(key).Write(&m); err != nil {
		slog.Error("failed to read counter value",
			logfields.Metric(c.name), logfields.Key(key), logfields.Error(err))
		return 0
	}
	return int64(m.GetCounter().GetValue())
}
