package jwt

import (
	"fmt"
	"slices"
	"time"
)

// Policy holds the claim checks a consumer applies after [Verify] succeeded.
// The zero Policy only checks exp and nbf when they are present.
type Policy struct {
	// Issuer, when set, must equal the iss claim.
	Issuer string
	// Audience, when set, must appear in the aud claim.
	Audience string
	// Leeway widens the exp and nbf windows to absorb clock skew.
	Leeway time.Duration
	// RequireExpiry rejects tokens without an exp claim.
	RequireExpiry bool
	// MaxFutureIAT, when positive, rejects tokens issued further than this in
	// the future.
	MaxFutureIAT time.Duration
}

// Check applies p to claims at time now. It never looks at the signature.
func (p Policy) Check(claims Claims, now time.Time) error {
	if claims.ExpiresAt.IsZero() {
		if p.RequireExpiry {
			return ErrExpiryRequired
		}
	} else {
		exp, err := claims.ExpiresAt.Time()
		if err != nil {
			return fmt.Errorf("%w: exp: %v", ErrUnexpectedShape, err)
		}
		if !now.Before(exp.Add(p.Leeway)) {
			return fmt.Errorf("%w: expired at %s", ErrTokenExpired, exp.UTC().Format(time.RFC3339))
		}
	}

	if !claims.NotBefore.IsZero() {
		nbf, err := claims.NotBefore.Time()
		if err != nil {
			return fmt.Errorf("%w: nbf: %v", ErrUnexpectedShape, err)
		}
		if now.Add(p.Leeway).Before(nbf) {
			return fmt.Errorf("%w: valid from %s", ErrTokenNotYetValid, nbf.UTC().Format(time.RFC3339))
		}
	}

	if p.MaxFutureIAT > 0 && !claims.IssuedAt.IsZero() {
		iat, err := claims.IssuedAt.Time()
		if err != nil {
			return fmt.Errorf("%w: iat: %v", ErrUnexpectedShape, err)
		}
		if iat.After(now.Add(p.MaxFutureIAT)) {
			return ErrIssuedInFuture
		}
	}

	if p.Issuer != "" && claims.Issuer != p.Issuer {
		return fmt.Errorf("%w: got %q", ErrIssuerMismatch, claims.Issuer)
	}
	if p.Audience != "" && !slices.Contains(claims.Audience, p.Audience) {
		return ErrAudienceMismatch
	}
	return nil
}
