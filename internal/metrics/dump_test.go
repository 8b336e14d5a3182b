package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildKey(t *testing.T) {
	cases := []struct {
		name   string
		metric string
		labels []*dto.LabelPair
		extra  [][2]string
		want   string
	}{
		{
			name:   "bare name",
			metric: "connections",
			want:   "connections",
		},
		{
			name:   "single label",
			metric: "latencyByShard",
			labels: labelPairs("key", "shard0"),
			want:   `latencyByShard{key="shard0"}`,
		},
		{
			name:   "multiple labels joined by comma",
			metric: "m",
			labels: append(labelPairs("a", "1"), labelPairs("b", "2")...),
			want:   `m{a="1",b="2"}`,
		},
		{
			name:   "extra pair after labels",
			metric: "latency",
			labels: labelPairs("key", "s0"),
			extra:  [][2]string{{"quantile", "0.5"}},
			want:   `latency{key="s0",quantile="0.5"}`,
		},
		{
			name:   "extra pair only",
			metric: "latency",
			extra:  [][2]string{{"quantile", "0.99"}},
			want:   `latency{quantile="0.99"}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var extra [][2]string
			extra = append(extra, tc.extra...)
			got := buildKey(tc.metric, tc.labels, extra...)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDumpSamples_OneEntryPerSample(t *testing.T) {
	reg := prometheus.NewRegistry()
	ctx := NewContext(reg)

	c, err := ctx.GetCounter("requests")
	require.NoError(t, err)
	c.Add(8)

	require.NoError(t, ctx.RegisterGauge("connections", func() (float64, bool) { return 42, true }))

	s, err := ctx.GetSummary("latency", Basic)
	require.NoError(t, err)
	s.Add(7)

	ctx.SampleGauges()

	var calls int
	got := make(map[string]float64)
	DumpSamples(reg, func(key string, value float64) {
		calls++
		got[key] = value
	})

	// requests, connections, latency{quantile=0.5}, latency_count, latency_sum
	assert.Equal(t, 5, calls)
	assert.Equal(t, 8.0, got["requests"])
	assert.Equal(t, 42.0, got["connections"])
	assert.Equal(t, 1.0, got["latency_count"])
	assert.Equal(t, 7.0, got["latency_sum"])
	assert.InDelta(t, 7.0, got[`latency{quantile="0.5"}`], 0.001)
}

func TestDumpSamples_Histograms(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "request_duration",
		Help:    "request_duration",
		Buckets: []float64{1, 5},
	})
	require.NoError(t, reg.Register(h))
	h.Observe(0.5)
	h.Observe(3)

	got := make(map[string]float64)
	DumpSamples(reg, func(key string, value float64) {
		got[key] = value
	})

	assert.Equal(t, 1.0, got[`request_duration_bucket{le="1"}`])
	assert.Equal(t, 2.0, got[`request_duration_bucket{le="5"}`])
	assert.Equal(t, 2.0, got["request_duration_count"])
	assert.Equal(t, 3.5, got["request_duration_sum"])
}

func labelPairs(kv ...string) []*dto.LabelPair {
	var out []*dto.LabelPair
	for i := 0; i+1 < len(kv); i += 2 {
		name, value := kv[i], kv[i+1]
		out = append(out, &dto.LabelPair{Name: &name, Value: &value})
	}
	return out
}
