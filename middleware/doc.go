// Package middleware exposes the edge-context access machine as
// net/http middleware.
//
// # Guards
//
//   - [Edge] — evaluates every request against the engine's edge
//     machine before the wrapped handler runs; redirects carry the
//     original path in the configured callback parameter.
//
// [DecisionFromContext] recovers the decision inside the wrapped
// handler for logging or response shaping.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authorization logic itself — all decisions are delegated to
// Engine.EvaluateEdge.
//
// # What this package must NOT do
//
//   - Parse the user cookie or classify paths (the engine owns both).
//   - Perform store or network I/O; the edge path stays synchronous.
//   - Write session cookies.
package middleware
