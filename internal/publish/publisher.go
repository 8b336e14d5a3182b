// Package publish pushes periodic metric dumps to a NATS subject so
// collectors that cannot scrape the HTTP endpoint still receive samples.
package publish

import (
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/metricshub/internal/config"
	"git.home.luguber.info/inful/metricshub/internal/errors"
	"git.home.luguber.info/inful/metricshub/internal/logfields"
	"git.home.luguber.info/inful/metricshub/internal/metrics"
	"git.home.luguber.info/inful/metricshub/internal/retry"
)

// Dumper walks every current metric sample. The provider implements it.
type Dumper interface {
	Dump(metrics.SampleSink)
}

// DumpEvent is the wire payload published per interval.
type DumpEvent struct {
	Timestamp time.Time          `json:"timestamp"`
	Samples   map[string]float64 `json:"samples"`
}

// Publisher serializes dumps and publishes them to a single subject.
type Publisher struct {
	conn    *nats.Conn
	subject string
	dumper  Dumper
	policy  retry.Policy
}

// New connects to the configured NATS server. The connection reconnects
// indefinitely so a broker restart does not kill the publisher.
func New(cfg config.PublishConfig, dumper Dumper) (*Publisher, error) {
	conn, err := nats.Connect(cfg.NATSURL,
		nats.Name("metricshub"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, errors.PublishFailed(cfg.NATSURL, err)
	}

	slog.Info("dump publisher connected",
		logfields.Subject(cfg.Subject),
		slog.String("url", cfg.NATSURL))

	return &Publisher{
		conn:    conn,
		subject: cfg.Subject,
		dumper:  dumper,
		policy:  retry.DefaultPolicy(),
	}, nil
}

// Publish collects a dump and sends it as one message, retrying transient
// send failures with backoff. NaN values cannot be carried in JSON and are
// omitted, matching the HTTP dump endpoint.
func (p *Publisher) Publish() error {
	event := DumpEvent{
		Timestamp: time.Now().UTC(),
		Samples:   collectSamples(p.dumper),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return errors.PublishFailed(p.subject, err)
	}

	var lastErr error
	for attempt := 0; attempt <= p.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(p.policy.Delay(attempt))
		}
		if lastErr = p.conn.Publish(p.subject, data); lastErr == nil {
			slog.Debug("published metrics dump",
				logfields.Subject(p.subject),
				slog.Int("samples", len(event.Samples)))
			return nil
		}
		slog.Warn("publish attempt failed",
			logfields.Subject(p.subject),
			slog.Int("attempt", attempt+1),
			logfields.Error(lastErr))
	}
	return errors.PublishFailed(p.subject, lastErr)
}

// Close drains the connection so in-flight messages are delivered before the
// socket closes.
func (p *Publisher) Close() {
	if p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		slog.Warn("cannot drain publisher connection", logfields.Error(err))
		p.conn.Close()
	}
}

func collectSamples(dumper Dumper) map[string]float64 {
	samples := make(map[string]float64)
	dumper.Dump(func(key string, value float64) {
		if math.IsNaN(value) {
			return
		}
		samples[key] = value
	})
	return samples
}
