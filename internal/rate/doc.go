// Package rate provides a Redis-backed fixed-window throttle for the
// gateway's connection-heavy endpoints.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key prefix:
//   - rg:rl: — stream connections per-IP
//
// # What this package must NOT do
//
//   - Make access decisions. It only bounds connection churn.
//   - Be imported outside the routegate module.
package rate
