// Package otel binds goAudit Emitter metrics to OpenTelemetry.
//
// [NewOTelExporter] registers an Int64ObservableCounter per counter and an
// Int64ObservableGauge per latency bucket. A single callback reads
// [goAudit.Emitter.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate emitter state.
package otel
