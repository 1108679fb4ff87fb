// Package otel binds goGate metrics to an OpenTelemetry Meter.
//
// [NewExporter] registers one Int64ObservableCounter per engine counter and, for the
// guard latency histogram, a cumulative bucket gauge keyed by an "le" attribute plus
// a count gauge. A single callback reads the engine snapshot per collection.
//
// # What this package must NOT do
//
//   - Own the MeterProvider; callers supply the Meter.
//   - Mutate engine state.
package otel
