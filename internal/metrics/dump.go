package metrics

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"git.home.luguber.info/inful/metricshub/internal/logfields"
)

// SampleSink receives one call per serialized sample. Keys are built as
// `name` for label-free samples and `name{label1="v1",label2="v2"}` for
// labelled ones.
type SampleSink func(key string, value float64)

// DumpSamples flattens everything the gatherer currently holds into
// per-sample sink calls. It serves push-style consumers (admin interfaces,
// test sinks, the NATS publisher); the HTTP pull path serializes the
// gatherer directly in the exposition format instead.
func DumpSamples(g prometheus.Gatherer, sink SampleSink) {
	families, err := g.Gather()
	if err != nil {
		// Gather returns the families it could collect alongside the error.
		slog.Error("metric gathering was incomplete", logfields.Error(err))
	}
	for _, mf := range families {
		name := mf.GetName()
		for _, m := range mf.GetMetric() {
			dumpMetric(name, mf.GetType(), m, sink)
		}
	}
}

func dumpMetric(name string, typ dto.MetricType, m *dto.Metric, sink SampleSink) {
	labels := m.GetLabel()
	switch typ {
	case dto.MetricType_COUNTER:
		sink(buildKey(name, labels), m.GetCounter().GetValue())
	case dto.MetricType_GAUGE:
		sink(buildKey(name, labels), m.GetGauge().GetValue())
	case dto.MetricType_UNTYPED:
		sink(buildKey(name, labels), m.GetUntyped().GetValue())
	case dto.MetricType_SUMMARY:
		s := m.GetSummary()
		for _, q := range s.GetQuantile() {
			sink(buildKey(name, labels, quantilePair(q.GetQuantile())), q.GetValue())
		}
		sink(buildKey(name+"_count", labels), float64(s.GetSampleCount()))
		sink(buildKey(name+"_sum", labels), s.GetSampleSum())
	case dto.MetricType_HISTOGRAM:
		h := m.GetHistogram()
		for _, b := range h.GetBucket() {
			le := strconv.FormatFloat(b.GetUpperBound(), 'g', -1, 64)
			sink(buildKey(name+"_bucket", labels, [2]string{"le", le}), float64(b.GetCumulativeCount()))
		}
		sink(buildKey(name+"_count", labels), float64(h.GetSampleCount()))
		sink(buildKey(name+"_sum", labels), h.GetSampleSum())
	}
}

func quantilePair(q float64) [2]string {
	return [2]string{"quantile", strconv.FormatFloat(q, 'g', -1, 64)}
}

func buildKey(name string, labels []*dto.LabelPair, extra ...[2]string) string {
	if len(labels) == 0 && len(extra) == 0 {
		return name
	}
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	written := 0
	for _, lp := range labels {
		if written > 0 {
			b.WriteByte(',')
		}
		b.WriteString(lp.GetName())
		b.WriteString(`="`)
		b.WriteString(lp.GetValue())
		b.WriteByte('"')
		written++
	}
	for _, pair := range extra {
		if written > 0 {
			b.WriteByte(',')
		}
		b.WriteString(pair[0])
		b.WriteString(`="`)
		b.WriteString(pair[1])
		b.WriteByte('"')
		written++
	}
	b.WriteByte('}')
	return b.String()
}
