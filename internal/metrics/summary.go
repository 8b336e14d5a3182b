package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/metricshub/internal/errors"
)

// Summary records observations into a windowed quantile sketch. The quantile
// set is fixed at construction time by the detail level.
type Summary struct {
	name  string
	level DetailLevel
	inner *windowedSummary
}

func newSummary(name string, level DetailLevel, reg prometheus.Registerer) (*Summary, error) {
	inner := newWindowedSummary(name, level)
	if err := reg.Register(inner); err != nil {
		return nil, errors.BackendRegistration(name, err)
	}
	return &Summary{name: name, level: level, inner: inner}, nil
}

// Add feeds one observation into the sketch.
func (s *Summary) Add(value int64) {
	s.inner.Observe(float64(value))
}

// Rotate advances the sliding window so quantiles reflect bounded recent
// history. Called by the rotation scheduler.
func (s *Summary) Rotate() {
	s.inner.Rotate()
}

// SummarySet is a summary with one windowed sketch per observed key.
type SummarySet struct {
	name  string
	level DetailLevel
	inner *windowedSummaryVec
}

func newSummarySet(name string, level DetailLevel, reg prometheus.Registerer) (*SummarySet, error) {
	inner := newWindowedSummaryVec(name, level)
	if err := reg.Register(inner); err != nil {
		return nil, errors.BackendRegistration(name, err)
	}
	return &SummarySet{name: name, level: level, inner: inner}, nil
}

// Add feeds one observation into the key's sketch.
func (s *SummarySet) Add(key string, value int64) {
	s.inner.Observe(key, float64(value))
}

// Rotate advances every key's sliding window.
func (s *SummarySet) Rotate() {
	s.inner.Rotate()
}
