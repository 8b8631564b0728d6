package middleware

import (
	"context"
	"net/http"

	goJWT "github.com/MrEthical07/goJWT"
)

type resultContextKey struct{}

// ResultFromContext returns the validation result stored by RequirePolicy.
func ResultFromContext(ctx context.Context) (*goJWT.ValidateResult, bool) {
	res, ok := ctx.Value(resultContextKey{}).(*goJWT.ValidateResult)
	return res, ok
}

// RequirePolicy is Guard plus the engine's claim policy (expiry, not-before,
// issuer, audience), via Engine.Validate.
func RequirePolicy(engine *goJWT.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				unauthorized(w)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w)
				return
			}

			res, err := engine.Validate(r.Context(), token)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), resultContextKey{}, res)
			ctx = context.WithValue(ctx, claimsContextKey{}, res.Claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
