package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyMetric      = "metric"
	KeyKind        = "metric_kind"
	KeyKey         = "key"
	KeyDelta       = "delta"
	KeyValue       = "value"
	KeyDetailLevel = "detail_level"
	KeyDurationMS  = "duration_ms"
	KeyScheduleID  = "schedule_id"
	KeySchedule    = "schedule_name"
	KeyHost        = "host"
	KeyPort        = "port"
	KeyPath        = "path"
	KeyMethod      = "method"
	KeyStatus      = "status"
	KeySubject     = "subject"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Metric(name string) slog.Attr    { return slog.String(KeyMetric, name) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Key(k string) slog.Attr          { return slog.String(KeyKey, k) }
func Delta(d int64) slog.Attr         { return slog.Int64(KeyDelta, d) }
func Value(v float64) slog.Attr       { return slog.Float64(KeyValue, v) }
func DetailLevel(l string) slog.Attr  { return slog.String(KeyDetailLevel, l) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func ScheduleID(id string) slog.Attr  { return slog.String(KeyScheduleID, id) }
func ScheduleName(n string) slog.Attr { return slog.String(KeySchedule, n) }
func Host(h string) slog.Attr         { return slog.String(KeyHost, h) }
func Port(p int) slog.Attr            { return slog.Int(KeyPort, p) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
