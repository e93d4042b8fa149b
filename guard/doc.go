// Package guard runs the client-context access machine around a
// protected view.
//
// A [Guard] wraps one path and re-evaluates it against every session
// snapshot it observes. While the auth context is still loading it
// reports [StateLoading] and never navigates, so an async context
// cannot be punished for a false negative. Once settled it either
// exposes the content or asks its [Navigator] for a replace-navigation
// to the login route; the placeholder keeps rendering until that
// navigation lands — there is no intermediate "redirected" view.
//
// Guards are not latches: a later snapshot (logout, role change) flips
// the state back, and repeated observation of an unchanged snapshot
// produces the identical outcome.
//
// # What this package must NOT do
//
//   - Mutate session state; snapshots are read-only inputs.
//   - Decide access itself — evaluation is delegated to the engine.
package guard
