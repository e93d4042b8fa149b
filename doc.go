// Package routegate decides who may navigate where on the storefront.
//
// It combines a route classifier (routes), a session-signal resolver
// (session), and a decision engine that runs in two execution contexts:
// at the network edge before any page content is produced, and inside
// the rendered client as reactive guards. The [Engine] is built once
// through [Builder.Build] and is safe to call from multiple goroutines.
//
// # Architecture boundaries
//
// routegate is the public surface. It exposes [Engine], [Builder],
// [Config], and value types (Decision, EdgeSignals, MetricsSnapshot).
// Internal coordination — metric storage, audit dispatch — lives under
// internal/ and is never exported directly.
//
// # What this package must NOT do
//
//   - Issue, refresh, or revoke credentials (the login service owns
//     session state; routegate only reads it).
//   - Perform network or store I/O on the edge path. EvaluateEdge is
//     synchronous and cookie-only because it gates every navigation.
//   - Cache decisions. Every evaluation is computed fresh from its
//     inputs and repeated evaluation with unchanged inputs yields the
//     identical decision.
//
// # Performance contract
//
// EvaluateEdge is the hot path: string matching over small tables plus
// at most one JSON decode of the user cookie. It must complete without
// allocation beyond the returned Decision and without leaving the
// request goroutine.
package routegate
