package jwt

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"

	gjwt "github.com/golang-jwt/jwt/v5"
)

const segmentSeparator = "."

// Sign serializes header and claims, signs the signing input with key using
// RSASSA-PKCS1-v1_5 over SHA-256 and returns the compact token.
//
// An empty header algorithm is treated as RS256; any other algorithm fails
// with [ErrUnsupportedAlgorithm]. Identical inputs always yield identical
// signing input, and since PKCS#1 v1.5 is deterministic, identical tokens.
func Sign(header Header, claims Claims, key *rsa.PrivateKey) (string, error) {
	if err := checkPrivateKey(key); err != nil {
		return "", err
	}
	h, err := header.normalized()
	if err != nil {
		return "", err
	}

	signingInput, err := SigningInput(h, claims)
	if err != nil {
		return "", err
	}

	sig, err := gjwt.SigningMethodRS256.Sign(signingInput, key)
	if err != nil {
		if errors.Is(err, gjwt.ErrInvalidKey) || errors.Is(err, gjwt.ErrInvalidKeyType) {
			return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		return "", fmt.Errorf("sign rs256: %w", err)
	}

	return signingInput + segmentSeparator + EncodeSegment(sig), nil
}

// SignPEM is [Sign] with a PEM encoded private key.
func SignPEM(header Header, claims Claims, privateKeyPEM []byte) (string, error) {
	key, err := ParsePrivateKeyPEM(privateKeyPEM)
	if err != nil {
		return "", err
	}
	return Sign(header, claims, key)
}

// SigningInput returns base64url(header) + "." + base64url(claims).
func SigningInput(header Header, claims Claims) (string, error) {
	headerJSON, err := header.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("encode header: %w", err)
	}
	claimsJSON, err := claims.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("encode claims: %w", err)
	}
	return EncodeSegment(headerJSON) + segmentSeparator + EncodeSegment(claimsJSON), nil
}

// Verify reports whether token carries a valid RS256 signature from the
// holder of the private key matching key.
//
// A signature that does not match returns (false, nil). Structural problems
// return false with [ErrMalformedToken] or [ErrMalformedSegment], and an
// unusable key returns false with [ErrInvalidKey], so callers can tell a
// forged token apart from garbage input.
//
// Verify checks integrity only. Expiry, not-before, issuer and audience are
// left to [Policy.Check] on the decoded claims.
func Verify(token string, key *rsa.PublicKey) (bool, error) {
	parts, err := split(token)
	if err != nil {
		return false, err
	}
	sig, err := DecodeSegment(parts[2])
	if err != nil {
		return false, fmt.Errorf("signature segment: %w", err)
	}
	if err := checkPublicKey(key); err != nil {
		return false, err
	}

	// The signature covers the bytes as received; never re-encode them.
	signingInput := parts[0] + segmentSeparator + parts[1]
	if err := gjwt.SigningMethodRS256.Verify(signingInput, sig, key); err != nil {
		if errors.Is(err, gjwt.ErrInvalidKeyType) {
			return false, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		return false, nil
	}
	return true, nil
}

// VerifyPEM is [Verify] with a PEM encoded public key.
func VerifyPEM(token string, publicKeyPEM []byte) (bool, error) {
	key, err := ParsePublicKeyPEM(publicKeyPEM)
	if err != nil {
		return false, err
	}
	return Verify(token, key)
}

// Decode returns the claims of token without checking the signature.
// The result is untrusted until [Verify] has returned true for the same token.
func Decode(token string) (Claims, error) {
	parts, err := split(token)
	if err != nil {
		return Claims{}, err
	}
	raw, err := DecodeSegment(parts[1])
	if err != nil {
		return Claims{}, fmt.Errorf("claims segment: %w", err)
	}
	var c Claims
	if err := c.UnmarshalJSON(raw); err != nil {
		return Claims{}, fmt.Errorf("claims segment: %w", err)
	}
	return c, nil
}

// DecodeHeader returns the header of token without checking the signature.
func DecodeHeader(token string) (Header, error) {
	parts, err := split(token)
	if err != nil {
		return Header{}, err
	}
	raw, err := DecodeSegment(parts[0])
	if err != nil {
		return Header{}, fmt.Errorf("header segment: %w", err)
	}
	var h Header
	if err := h.UnmarshalJSON(raw); err != nil {
		return Header{}, fmt.Errorf("header segment: %w", err)
	}
	return h, nil
}

func split(token string) ([3]string, error) {
	var out [3]string
	if n := strings.Count(token, segmentSeparator); n != 2 {
		return out, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, n+1)
	}
	parts := strings.SplitN(token, segmentSeparator, 3)
	copy(out[:], parts)
	return out, nil
}
