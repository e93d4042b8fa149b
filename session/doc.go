// Package session derives a normalized authentication state from the
// raw signals available at an evaluation point.
//
// # Signals
//
// Three independent sources can contribute: the in-memory auth context
// of a running client (authenticated flag, loading flag, token, user),
// the request cookie pair (auth token plus a JSON-serialized user
// record), and a durable token presence flag (the server-side stand-in
// for a token persisted in local storage). Each source is optional;
// absence of all of them resolves to unauthenticated.
//
// # Failure posture
//
// Resolution never fails. A user cookie that does not parse counts as
// "no user" and the remaining signals carry the state; a source whose
// provider reports itself unavailable reads as absent. The resolver
// has no environment detection of its own — availability is a property
// of the injected [Provider].
//
// # What this package must NOT do
//
//   - Write cookies, tokens, or any session state (login/logout flows
//     own those).
//   - Decide access. It reports state; the engine decides.
package session
