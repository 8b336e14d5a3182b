package metrics

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/metricshub/internal/errors"
	"git.home.luguber.info/inful/metricshub/internal/logfields"
)

// GaugeFunc supplies the current value of a gauge when sampled. Returning
// ok=false means the value is absent and zero is recorded for this pass.
type GaugeFunc func() (value float64, ok bool)

// GaugeSetFunc supplies one value per key when sampled. Keys missing from
// the returned map are simply not updated this pass; a nil map updates
// nothing.
type GaugeSetFunc func() map[string]float64

// gaugeWrapper bridges a pull-style callback to a backing gauge collector.
// The collector is only written to when sampled.
type gaugeWrapper struct {
	name  string
	fn    GaugeFunc
	inner prometheus.Gauge
}

// newGaugeWrapper creates a wrapper around prev's collector when prev is
// non-nil. Threading the collector forward keeps deliberate re-registration
// (the component-restart case) from tripping duplicate registration on the
// shared backend registry.
func newGaugeWrapper(name string, fn GaugeFunc, prev *gaugeWrapper, reg prometheus.Registerer) (*gaugeWrapper, error) {
	if prev != nil {
		return &gaugeWrapper{name: name, fn: fn, inner: prev.inner}, nil
	}
	inner := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: name})
	if err := reg.Register(inner); err != nil {
		return nil, errors.BackendRegistration(name, err)
	}
	return &gaugeWrapper{name: name, fn: fn, inner: inner}, nil
}

// sample invokes the callback and materializes its value into the collector.
// A panicking callback is isolated here so one faulty gauge cannot abort the
// sampling pass; its value for this pass is zero.
func (g *gaugeWrapper) sample() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("gauge callback panicked",
				logfields.Metric(g.name), slog.Any("panic", r))
			g.inner.Set(0)
		}
	}()
	v, ok := g.fn()
	if !ok {
		g.inner.Set(0)
		return
	}
	g.inner.Set(v)
}

func (g *gaugeWrapper) unregister(reg unregisterer) {
	reg.Unregister(g.inner)
}

// gaugeSetWrapper is the labelled variant: the callback returns a value per
// key and each key gets its own backend sub-series.
type gaugeSetWrapper struct {
	name  string
	fn    GaugeSetFunc
	inner *prometheus.GaugeVec
}

func newGaugeSetWrapper(name string, fn GaugeSetFunc, prev *gaugeSetWrapper, reg prometheus.Registerer) (*gaugeSetWrapper, error) {
	if prev != nil {
		return &gaugeSetWrapper{name: name, fn: fn, inner: prev.inner}, nil
	}
	inner := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: name}, labels)
	if err := reg.Register(inner); err != nil {
		return nil, errors.BackendRegistration(name, err)
	}
	return &gaugeSetWrapper{name: name, fn: fn, inner: inner}, nil
}

func (g *gaugeSetWrapper) sample() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("gauge set callback panicked",
				logfields.Metric(g.name), slog.Any("panic", r))
		}
	}()
	for key, value := range g.fn() {
		g.inner.WithLabelValues(key).Set(value)
	}
}

func (g *gaugeSetWrapper) unregister(reg unregisterer) {
	reg.Unregister(g.inner)
}

type unregisterer interface {
	Unregister(prometheus.Collector) bool
}
