// Package jwt verifies the storefront auth-token cookie.
//
// Tokens are issued by the platform's login service, not by this
// module; routegate only needs to decide whether a presented token is
// genuine. A token that fails verification is treated as absent, it
// never fails the request. Ed25519 is the default verification method;
// HS256 is supported for shared-secret deployments.
//
// # What this package must NOT do
//
//   - Persist or cache tokens.
//   - Reach Redis or any network service.
//   - Make access decisions — it reports claims, the engine decides.
package jwt
