package test

import (
	"context"
	"crypto/rsa"
	"net/http"
	"testing"

	goJWT "github.com/MrEthical07/goJWT"
	"github.com/MrEthical07/goJWT/jwt"
	"github.com/MrEthical07/goJWT/keys"
	"github.com/MrEthical07/goJWT/middleware"
)

// This test intentionally guards public API compile-compat for consumers.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = goJWT.New
	_ = goJWT.DefaultConfig

	var _ *goJWT.Engine
	var _ goJWT.Config
	var _ goJWT.IssueRequest
	var _ goJWT.ValidateResult
	var _ goJWT.AuditSink
	var _ goJWT.SecurityReport

	var _ error = goJWT.ErrInvalidConfig
	var _ error = goJWT.ErrSigningKeyMissing
	var _ error = goJWT.ErrTokenNotVerified
	var _ error = goJWT.ErrPolicyViolation
	var _ error = jwt.ErrMalformedToken
	var _ error = jwt.ErrInvalidKey

	var _ func(jwt.Header, jwt.Claims, *rsa.PrivateKey) (string, error) = jwt.Sign
	var _ func(string, *rsa.PublicKey) (bool, error) = jwt.Verify
	var _ func(string) (jwt.Claims, error) = jwt.Decode

	var _ func(*goJWT.Engine) func(http.Handler) http.Handler = middleware.Guard
	var _ func(*goJWT.Engine) func(http.Handler) http.Handler = middleware.RequirePolicy

	var _ keys.Source = keys.StaticSource{}
	var _ keys.Source = keys.FileSource{}
	var _ keys.Source = keys.EnvSource{}
	var _ keys.Source = (*keys.RedisSource)(nil)

	var _ func(*goJWT.Engine, context.Context, jwt.Claims) (string, error) = (*goJWT.Engine).Sign
	var _ func(*goJWT.Engine, context.Context, goJWT.IssueRequest) (string, error) = (*goJWT.Engine).Issue
	var _ func(*goJWT.Engine, context.Context, string) (bool, error) = (*goJWT.Engine).Verify
	var _ func(*goJWT.Engine, context.Context, string) (*goJWT.ValidateResult, error) = (*goJWT.Engine).Validate
}
