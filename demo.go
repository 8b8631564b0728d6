package goJWT

import "github.com/MrEthical07/goJWT/jwt"

// DemoClaims returns the fixed claim set served by the demo issuance endpoint.
// The time claims are literal decimal strings, not derived from the clock, so
// the demo token is reproducible for a given key.
func DemoClaims() jwt.Claims {
	return jwt.Claims{
		Name:      "Kitura-JWT",
		Issuer:    "issuer",
		Audience:  []string{"clientID"},
		IssuedAt:  "1485949565.58463",
		ExpiresAt: "2485949565.58463",
		NotBefore: "1485949565.58463",
	}
}
