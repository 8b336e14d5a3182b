// Package metrics implements the concurrent metric registry at the heart of
// metricshub.
//
// Application components obtain named, typed metric handles (counters,
// gauges, summaries and their labelled "set" variants) from a Context
// without depending on the Prometheus client directly. Handles are created
// lazily on first request and are idempotent by name: concurrent callers for
// the same new name converge on a single handle backed by a single
// Prometheus collector.
//
// Gauges are callbacks, not stored values. Their backing collector is only
// materialized when the Context samples them, which every external read
// path (HTTP scrape, dump) must do first. Re-registering a gauge under an
// existing name replaces the callback but reuses the backing collector, so
// restarting components never trip duplicate-registration errors.
//
// Summaries track approximate quantiles over a sliding time window. A
// periodic rotation pass (driven by the provider's scheduler) resets each
// summary's quantile sketch so reads reflect bounded recent history rather
// than process-lifetime history.
package metrics
