package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	goJWT "github.com/MrEthical07/goJWT"
	"github.com/MrEthical07/goJWT/jwt"
)

var (
	keyOnce sync.Once
	testKey *rsa.PrivateKey
	keyErr  error
)

func newTestEngine(t *testing.T, mutate func(*goJWT.Config)) *goJWT.Engine {
	t.Helper()
	keyOnce.Do(func() {
		testKey, keyErr = rsa.GenerateKey(rand.Reader, 2048)
	})
	if keyErr != nil {
		t.Fatalf("generate key: %v", keyErr)
	}

	cfg := goJWT.DefaultConfig()
	cfg.Issue.Issuer = "issuer"
	cfg.Issue.Audience = []string{"clientID"}
	cfg.Policy.Issuer = "issuer"
	cfg.Policy.Audience = "clientID"
	if mutate != nil {
		mutate(&cfg)
	}

	engine, err := goJWT.New().WithConfig(cfg).WithKeys(testKey, nil).Build()
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func echoName(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			t.Error("claims missing from context")
		}
		_, _ = w.Write([]byte(claims.Name))
	})
}

func serve(h http.Handler, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGuard(t *testing.T) {
	engine := newTestEngine(t, nil)
	token, err := engine.Sign(context.Background(), goJWT.DemoClaims())
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	h := Guard(engine)(echoName(t))

	tests := []struct {
		name     string
		auth     string
		wantCode int
		wantBody string
	}{
		{"valid", "Bearer " + token, http.StatusOK, "Kitura-JWT"},
		{"lowercase scheme", "bearer " + token, http.StatusOK, "Kitura-JWT"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized, ""},
		{"empty token", "Bearer ", http.StatusUnauthorized, ""},
		{"malformed", "Bearer a.b", http.StatusUnauthorized, ""},
		{"bad signature", "Bearer " + token[:len(token)-4] + "AAAA", http.StatusUnauthorized, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(h, tc.auth)
			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			if tc.wantCode == http.StatusOK && rec.Body.String() != tc.wantBody {
				t.Fatalf("expected body %q, got %q", tc.wantBody, rec.Body.String())
			}
			if tc.wantCode == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
				t.Fatal("expected WWW-Authenticate header")
			}
		})
	}
}

func TestGuardNilEngine(t *testing.T) {
	rec := serve(Guard(nil)(http.NotFoundHandler()), "Bearer x.y.z")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestGuardIgnoresExpiry(t *testing.T) {
	engine := newTestEngine(t, nil)
	claims := goJWT.DemoClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	token, err := engine.Sign(context.Background(), claims)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if rec := serve(Guard(engine)(echoName(t)), "Bearer "+token); rec.Code != http.StatusOK {
		t.Fatalf("Guard: expected 200, got %d", rec.Code)
	}
	if rec := serve(RequirePolicy(engine)(http.NotFoundHandler()), "Bearer "+token); rec.Code != http.StatusUnauthorized {
		t.Fatalf("RequirePolicy: expected 401, got %d", rec.Code)
	}
}

func TestRequirePolicy(t *testing.T) {
	engine := newTestEngine(t, nil)
	token, err := engine.Issue(context.Background(), goJWT.IssueRequest{Name: "alice"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	h := RequirePolicy(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, ok := ResultFromContext(r.Context())
		if !ok || res.ExpiresAt.IsZero() {
			t.Error("validate result missing from context")
		}
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			t.Error("claims missing from context")
		}
		_, _ = w.Write([]byte(claims.Name))
	}))

	rec := serve(h, "Bearer "+token)
	if rec.Code != http.StatusOK || rec.Body.String() != "alice" {
		t.Fatalf("expected 200 alice, got %d %q", rec.Code, rec.Body.String())
	}

	other := newTestEngine(t, func(c *goJWT.Config) { c.Policy.Audience = "someone-else" })
	if rec := serve(RequirePolicy(other)(h), "Bearer "+token); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on audience mismatch, got %d", rec.Code)
	}
}
