package jwt

import "errors"

var (
	// ErrMalformedToken is returned when a token does not have exactly three segments.
	ErrMalformedToken = errors.New("malformed token")
	// ErrMalformedSegment is returned when a segment is not valid unpadded base64url.
	ErrMalformedSegment = errors.New("malformed segment")
	// ErrMalformedJSON is returned when a decoded segment is not valid JSON.
	ErrMalformedJSON = errors.New("malformed json")
	// ErrUnexpectedShape is returned when a decoded segment is valid JSON but not
	// an object, or a recognized member has the wrong JSON type.
	ErrUnexpectedShape = errors.New("unexpected json shape")
	// ErrInvalidKey is returned when key material is missing, unparsable, or too weak.
	ErrInvalidKey = errors.New("invalid key")
	// ErrSerializationFailure is returned when a header or claim set cannot be encoded.
	ErrSerializationFailure = errors.New("serialization failure")
	// ErrUnsupportedAlgorithm is returned when a header names an algorithm other than RS256.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
)

// Policy violations. These are only produced by [Policy.Check], never by [Verify].
var (
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenNotYetValid = errors.New("token not yet valid")
	ErrIssuedInFuture   = errors.New("token iat too far in the future")
	ErrIssuerMismatch   = errors.New("issuer mismatch")
	ErrAudienceMismatch = errors.New("audience mismatch")
	ErrExpiryRequired   = errors.New("exp claim required")
)
