// Package otel bridges routegate decision metrics into OpenTelemetry.
//
// [NewOTelExporter] registers observable instruments on a caller-supplied
// [metric.Meter] and serves values from engine snapshots on each collection.
// Histograms are exported as cumulative bucket gauges because snapshots carry
// counts only, not raw samples.
//
// # What this package must NOT do
//
//   - Own a MeterProvider. Callers configure the SDK and pass a Meter.
//   - Mutate engine state.
package otel
