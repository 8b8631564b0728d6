// Package goJWT issues and verifies RS256 JSON Web Tokens for services that own
// one RSA key pair.
//
// The cryptographic core lives in the [github.com/MrEthical07/goJWT/jwt]
// package and is stateless: every call takes its key material as an argument.
// This package wraps it in an [Engine] configured once through [Builder],
// adding key loading, claim policy, metrics, audit events and structured
// logging.
//
// # Verification and policy
//
// [Engine.Verify] only answers whether a token was signed by the configured key
// and left unaltered. [Engine.Validate] additionally decodes the claims and
// applies the configured [PolicyConfig] (exp, nbf, iat, iss, aud). Callers that
// use Verify directly must run their own policy checks before trusting claims.
//
// # Concurrency
//
// An Engine is immutable after Build. All methods are safe for concurrent use.
// Close stops the audit dispatcher and must be called once the Engine is no
// longer used.
package goJWT
