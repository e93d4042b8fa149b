// Package internal groups helpers that are intentionally private to routegate.
//
// # Sub-packages
//
//   - audit — async event dispatch (Dispatcher + Sink implementations)
//   - cli — the gated command tree
//   - config — gateway YAML loading and hot reload
//   - gateway — reverse proxy, metrics endpoint, and the decision stream
//   - metrics — lock-free counters and latency histograms
//   - rate — Redis-backed fixed-window connection throttle
//
// # What this package must NOT do
//
//   - Export types that appear in the public routegate API.
//   - Be imported by any package outside the routegate module.
package internal
