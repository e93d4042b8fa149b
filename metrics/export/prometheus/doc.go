// Package prometheus renders routegate decision metrics in Prometheus text
// exposition format.
//
// [NewPrometheusExporter] accepts a [routegate.Engine] and exposes an
// [http.Handler] that renders all routegate counters and histograms. Counter
// names are prefixed routegate_*_total; the single histogram is
// routegate_evaluate_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Mutate engine state.
package prometheus
