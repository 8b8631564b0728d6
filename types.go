package goJWT

import (
	"time"

	"github.com/MrEthical07/goJWT/jwt"
)

// IssueRequest is the per-token input of [Engine.Issue]. Empty fields fall
// back to the engine's IssueConfig.
type IssueRequest struct {
	// Name is the free-text subject carried in the name claim.
	Name     string
	Audience []string
	TTL      time.Duration
}

// ValidateResult is returned by [Engine.Validate] for a token that verified
// and passed policy.
type ValidateResult struct {
	Header jwt.Header
	Claims jwt.Claims
	// ExpiresAt is the parsed exp claim; zero when the token has none.
	ExpiresAt time.Time
}
