// Package prometheus exposes goGate metrics as a prometheus.Collector.
//
// [NewCollector] reads [goGate.Engine.MetricsSnapshot] on every scrape. Counter
// names are gogate_*_total; the single histogram is gogate_guard_latency_seconds.
//
// # What this package must NOT do
//
//   - Register with the global Prometheus registry; callers register the Collector
//     or mount Handler.
//   - Mutate engine state.
package prometheus
