// Package prometheus exposes goAudit Emitter metrics to Prometheus.
//
// [PrometheusExporter] implements the client_golang Collector interface and
// also renders the text exposition format directly. Counter names are
// prefixed goaudit_*_total; the single histogram is
// goaudit_delivery_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry. Callers register
//     the exporter or mount its Handler.
//   - Mutate emitter state.
package prometheus
