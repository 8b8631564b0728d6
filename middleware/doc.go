// Package middleware exposes net/http adapters around goJWT.Engine.
//
// # Guards
//
//   - [Guard]: signature check only (Engine.Verify then Engine.Decode).
//   - [RequirePolicy]: signature check plus claim policy (Engine.Validate).
//
// Both read a Bearer token from the Authorization header, answer 401 on any
// failure without saying why, and store the decoded claims in the request
// context for [ClaimsFromContext].
//
// This package translates HTTP semantics into Engine calls. It never parses
// tokens or touches keys itself.
package middleware
