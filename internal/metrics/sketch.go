package metrics

import (
	"math"
	"sync"

	"github.com/beorn7/perks/quantile"
	"github.com/prometheus/client_golang/prometheus"
)

// quantileSketch is an internally synchronized quantile stream with
// cumulative count/sum. Quantile queries reflect only observations made
// since the last rotation; count and sum are lifetime values, matching the
// Prometheus summary data model.
type quantileSketch struct {
	mu         sync.Mutex
	objectives map[float64]float64
	stream     *quantile.Stream
	count      uint64
	sum        float64
}

func newQuantileSketch(objectives map[float64]float64) *quantileSketch {
	return &quantileSketch{
		objectives: objectives,
		stream:     quantile.NewTargeted(objectives),
	}
}

func (s *quantileSketch) observe(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stream.Insert(v)
	s.count++
	s.sum += v
}

// rotate resets the sliding window. Observations recorded before the reset
// no longer influence quantile queries.
func (s *quantileSketch) rotate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stream.Reset()
}

// snapshot returns the lifetime count and sum plus the current windowed
// quantile values. Quantiles of an empty window are NaN, which the text
// exposition format renders as such.
func (s *quantileSketch) snapshot() (count uint64, sum float64, quantiles map[float64]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quantiles = make(map[float64]float64, len(s.objectives))
	for q := range s.objectives {
		if s.stream.Count() == 0 {
			quantiles[q] = math.NaN()
			continue
		}
		quantiles[q] = s.stream.Query(q)
	}
	return s.count, s.sum, quantiles
}

// windowedSummary is a prometheus.Collector backed by a rotatable quantile
// sketch. The stock client summary ages its window internally on a fixed
// schedule; this one hands rotation control to the registry's scheduler.
type windowedSummary struct {
	desc   *prometheus.Desc
	sketch *quantileSketch
}

func newWindowedSummary(name string, level DetailLevel) *windowedSummary {
	return &windowedSummary{
		desc:   prometheus.NewDesc(name, name, nil, nil),
		sketch: newQuantileSketch(level.objectives()),
	}
}

func (s *windowedSummary) Describe(ch chan<- *prometheus.Desc) {
	ch <- s.desc
}

func (s *windowedSummary) Collect(ch chan<- prometheus.Metric) {
	count, sum, quantiles := s.sketch.snapshot()
	m, err := prometheus.NewConstSummary(s.desc, count, sum, quantiles)
	if err != nil {
		return
	}
	ch <- m
}

func (s *windowedSummary) Observe(v float64) {
	s.sketch.observe(v)
}

func (s *windowedSummary) Rotate() {
	s.sketch.rotate()
}

// windowedSummaryVec is the labelled variant: one sketch per observed value
// of the single "key" label, allocated lazily.
type windowedSummaryVec struct {
	desc       *prometheus.Desc
	objectives map[float64]float64

	mu       sync.RWMutex
	children map[string]*quantileSketch
}

func newWindowedSummaryVec(name string, level DetailLevel) *windowedSummaryVec {
	return &windowedSummaryVec{
		desc:       prometheus.NewDesc(name, name, []string{labelKey}, nil),
		objectives: level.objectives(),
		children:   make(map[string]*quantileSketch),
	}
}

func (s *windowedSummaryVec) Describe(ch chan<- *prometheus.Desc) {
	ch <- s.desc
}

func (s *windowedSummaryVec) Collect(ch chan<- prometheus.Metric) {
	s.mu.RLock()
	snapshot := make(map[string]*quantileSketch, len(s.children))
	for key, sk := range s.children {
		snapshot[key] = sk
	}
	s.mu.RUnlock()

	for key, sk := range snapshot {
		count, sum, quantiles := sk.snapshot()
		m, err := prometheus.NewConstSummary(s.desc, count, sum, quantiles, key)
		if err != nil {
			continue
		}
		ch <- m
	}
}

func (s *windowedSummaryVec) Observe(key string, v float64) {
	s.mu.RLock()
	sk, ok := s.children[key]
	s.mu.RUnlock()
	if !ok {
		s.mu.Lock()
		sk, ok = s.children[key]
		if !ok {
			sk = newQuantileSketch(s.objectives)
			s.children[key] = sk
		}
		s.mu.Unlock()
	}
	sk.observe(v)
}

func (s *windowedSummaryVec) Rotate() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sk := range s.children {
		sk.rotate()
	}
}
