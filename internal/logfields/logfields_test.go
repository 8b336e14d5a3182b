package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"Metric", KeyMetric, "requests", Metric("requests")},
		{"Kind", KeyKind, "counter", Kind("counter")},
		{"Key", KeyKey, "shard0", Key("shard0")},
		{"DetailLevel", KeyDetailLevel, "advanced", DetailLevel("advanced")},
		{"ScheduleID", KeyScheduleID, "sch1", ScheduleID("sch1")},
		{"ScheduleName", KeySchedule, "summary-rotate", ScheduleName("summary-rotate")},
		{"Host", KeyHost, "0.0.0.0", Host("0.0.0.0")},
		{"Path", KeyPath, "/metrics", Path("/metrics")},
		{"Method", KeyMethod, "GET", Method("GET")},
		{"Subject", KeySubject, "metrics.dump", Subject("metrics.dump")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.attr.Key != tc.attrKey {
				t.Errorf("expected key %q, got %q", tc.attrKey, tc.attr.Key)
			}
			if tc.attr.Value.String() != tc.attrVal {
				t.Errorf("expected value %q, got %q", tc.attrVal, tc.attr.Value.String())
			}
		})
	}
}

func TestNumericHelpers(t *testing.T) {
	if a := Delta(-1); a.Value.Int64() != -1 {
		t.Errorf("Delta: expected -1, got %d", a.Value.Int64())
	}
	if a := Value(42.5); a.Value.Float64() != 42.5 {
		t.Errorf("Value: expected 42.5, got %f", a.Value.Float64())
	}
	if a := Port(7000); a.Value.Int64() != 7000 {
		t.Errorf("Port: expected 7000, got %d", a.Value.Int64())
	}
	if a := Status(405); a.Value.Int64() != 405 {
		t.Errorf("Status: expected 405, got %d", a.Value.Int64())
	}
}

func TestErrorHelper(t *testing.T) {
	if a := Error(nil); a.Value.String() != "" {
		t.Errorf("nil error should render empty, got %q", a.Value.String())
	}
	if a := Error(errors.New("boom")); a.Value.String() != "boom" {
		t.Errorf("expected 'boom', got %q", a.Value.String())
	}
}
