// Package jwt issues and verifies RS256 compact JSON Web Tokens.
//
// [Sign] builds base64url(header) + "." + base64url(claims), signs it with an
// RSA private key and appends the base64url signature. [Verify] recomputes the
// signing input from the raw segments and checks the signature with the
// matching public key. [Decode] returns the claims of any well-formed token
// without checking the signature.
//
// Key material is passed on every call and never retained. All functions are
// stateless and safe for concurrent use.
//
// Verify answers only whether a token was issued by the key holder and left
// unaltered. Whether it is currently applicable (exp, nbf, iss, aud) is a
// separate question answered by [Policy.Check].
package jwt
