// Package rate provides Redis-backed fixed-window counters that throttle
// token issuance and failed verification per client.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key prefixes:
//   - jri: issuance per client IP
//   - jrv: failed verification per client IP
//
// # What this package must NOT do
//
//   - Decide HTTP status codes or response bodies (the caller does).
//   - Be imported outside the goJWT module.
package rate
