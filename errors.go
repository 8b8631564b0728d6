package goJWT

import "errors"

var (
	// ErrEngineNotReady is returned when a nil or unbuilt Engine is used.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrBuilderUsed is returned when Build is called twice on one Builder.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrInvalidConfig is wrapped by every Config.Validate failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrSigningKeyMissing is returned by issuing operations on a verify-only Engine.
	ErrSigningKeyMissing = errors.New("signing key not configured")
	// ErrVerifyKeyMissing is returned by verifying operations when no public key is configured.
	ErrVerifyKeyMissing = errors.New("verify key not configured")
	// ErrTokenNotVerified is returned by Validate when the signature does not match.
	ErrTokenNotVerified = errors.New("token did not verify")
	// ErrPolicyViolation wraps claim policy failures returned by Validate.
	ErrPolicyViolation = errors.New("token policy violation")
)
