package jwt

import (
	"errors"
	"testing"
	"time"
)

func TestPolicyCheck(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	valid := Claims{
		Issuer:    "issuer",
		Audience:  []string{"clientID", "other"},
		IssuedAt:  NewNumericDate(now.Add(-time.Minute)),
		NotBefore: NewNumericDate(now.Add(-time.Minute)),
		ExpiresAt: NewNumericDate(now.Add(time.Minute)),
	}

	cases := []struct {
		name   string
		policy Policy
		mutate func(*Claims)
		want   error
	}{
		{"valid", Policy{Issuer: "issuer", Audience: "clientID"}, func(*Claims) {}, nil},
		{"expired", Policy{}, func(c *Claims) { c.ExpiresAt = NewNumericDate(now.Add(-time.Second)) }, ErrTokenExpired},
		{"expired within leeway", Policy{Leeway: 30 * time.Second}, func(c *Claims) { c.ExpiresAt = NewNumericDate(now.Add(-10 * time.Second)) }, nil},
		{"not yet valid", Policy{}, func(c *Claims) { c.NotBefore = NewNumericDate(now.Add(time.Minute)) }, ErrTokenNotYetValid},
		{"nbf within leeway", Policy{Leeway: time.Minute}, func(c *Claims) { c.NotBefore = NewNumericDate(now.Add(30 * time.Second)) }, nil},
		{"missing exp allowed", Policy{}, func(c *Claims) { c.ExpiresAt = "" }, nil},
		{"missing exp required", Policy{RequireExpiry: true}, func(c *Claims) { c.ExpiresAt = "" }, ErrExpiryRequired},
		{"iat in future", Policy{MaxFutureIAT: time.Minute}, func(c *Claims) { c.IssuedAt = NewNumericDate(now.Add(time.Hour)) }, ErrIssuedInFuture},
		{"wrong issuer", Policy{Issuer: "someone"}, func(*Claims) {}, ErrIssuerMismatch},
		{"wrong audience", Policy{Audience: "api"}, func(*Claims) {}, ErrAudienceMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid
			c.Audience = append([]string(nil), valid.Audience...)
			tc.mutate(&c)
			err := tc.policy.Check(c, now)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestVerifyDoesNotEnforcePolicy(t *testing.T) {
	priv, _ := testKeys(t)
	expired := demoClaims()
	expired.ExpiresAt = "1000"

	token, err := Sign(NewHeader(), expired, priv)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	ok, err := Verify(token, &priv.PublicKey)
	if err != nil || !ok {
		t.Fatalf("expired token must still pass signature verification: ok=%v err=%v", ok, err)
	}

	claims, err := Decode(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := (Policy{}).Check(claims, time.Now()); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected policy to reject expired token, got %v", err)
	}
}
