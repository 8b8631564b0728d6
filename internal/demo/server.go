package demo

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	goJWT "github.com/MrEthical07/goJWT"
	clientrate "github.com/MrEthical07/goJWT/internal/rate"
	"github.com/MrEthical07/goJWT/metrics/export/prometheus"
	"github.com/MrEthical07/goJWT/middleware"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

const requestIDHeader = "X-Request-ID"

// Server serves token issuance and verification over HTTP.
type Server struct {
	cfg     *Config
	engine  *goJWT.Engine
	logger  *slog.Logger
	limiter *rate.Limiter
	health  *Health
	metrics *prometheus.PrometheusExporter

	clients *clientrate.Limiter
}

// NewServer wires handlers around engine. Health reports DOWN when the engine
// cannot sign or verify.
func NewServer(cfg *Config, engine *goJWT.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	health := NewHealth(
		HealthCheck{Name: "signing_key", Check: func(context.Context) error {
			if !engine.CanSign() {
				return errors.New("no private key loaded")
			}
			return nil
		}},
		HealthCheck{Name: "verify_key", Check: func(context.Context) error {
			if !engine.CanVerify() {
				return errors.New("no public key loaded")
			}
			return nil
		}},
	)

	return &Server{
		cfg:     cfg,
		engine:  engine,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(cfg.IssueRate), cfg.IssueBurst),
		health:  health,
		metrics: prometheus.NewPrometheusExporter(engine),
	}
}

// WithClientLimiter adds per-client issuance and verify-failure budgets kept
// in rdb, and a redis health check.
func (s *Server) WithClientLimiter(rdb redis.UniversalClient, cfg ClientRateConfig) *Server {
	s.clients = clientrate.New(rdb, clientrate.Config{
		MaxIssuePerWindow:     cfg.MaxIssuePerWindow,
		IssueWindow:           cfg.IssueWindow,
		MaxVerifyFailures:     cfg.MaxVerifyFailures,
		VerifyFailureCooldown: cfg.VerifyFailureCooldown,
	})
	s.health.Add(HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}})
	return s
}

// Health exposes the aggregated checks so callers can register more.
func (s *Server) Health() *Health {
	return s.health
}

// Handler returns the routed handler with request ids, access logs and CORS.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /jwt", s.getJWT)
	mux.HandleFunc("POST /verify", s.verifyJWT)
	mux.HandleFunc("GET /health", s.getHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.Handle("GET /protected", middleware.RequirePolicy(s.engine)(http.HandlerFunc(s.getProtected)))

	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
	})
	return c.Handler(s.withRequestContext(mux))
}

func (s *Server) getJWT(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		w.Header().Set("Retry-After", "1")
		writeText(w, http.StatusTooManyRequests, "Too many requests\n")
		return
	}
	if !s.clientAllowed(w, r, s.clients.AllowIssue(r.Context(), clientIP(r))) {
		return
	}

	token, err := s.engine.Sign(r.Context(), goJWT.DemoClaims())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "demo token signing failed",
			slog.String("request_id", goJWT.RequestIDFromContext(r.Context())),
			slog.Any("err", err),
		)
		writeText(w, http.StatusInternalServerError, "Could not sign JWT\n")
		return
	}
	writeText(w, http.StatusOK, token)
}

func (s *Server) verifyJWT(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeText(w, http.StatusRequestEntityTooLarge, "Body too large\n")
			return
		}
		writeText(w, http.StatusBadRequest, "Could not read body\n")
		return
	}
	if len(body) == 0 {
		writeText(w, http.StatusBadRequest, "No body\n")
		return
	}
	if !utf8.Valid(body) {
		writeText(w, http.StatusBadRequest, "Body not text\n")
		return
	}
	token := strings.TrimSpace(string(body))

	client := clientIP(r)
	if !s.clientAllowed(w, r, s.clients.CheckVerify(r.Context(), client)) {
		return
	}

	ok, err := s.engine.Verify(r.Context(), token)
	if err != nil || !ok {
		if rerr := s.clients.RecordVerifyFailure(r.Context(), client); rerr != nil && !errors.Is(rerr, clientrate.ErrRateLimited) {
			s.logger.WarnContext(r.Context(), "recording verify failure",
				slog.String("request_id", goJWT.RequestIDFromContext(r.Context())),
				slog.Any("err", rerr),
			)
		}
	}
	switch {
	case err != nil && goJWT.IsStructuralError(err):
		writeText(w, http.StatusBadRequest, "JWT is malformed\n")
		return
	case err != nil:
		s.logger.ErrorContext(r.Context(), "token verification failed",
			slog.String("request_id", goJWT.RequestIDFromContext(r.Context())),
			slog.Any("err", err),
		)
		writeText(w, http.StatusInternalServerError, "Could not verify JWT\n")
		return
	case !ok:
		writeText(w, http.StatusUnauthorized, "JWT did not verify\n")
		return
	}

	var b strings.Builder
	b.WriteString("JWT verified\n")
	if claims, err := s.engine.Decode(token); err == nil {
		b.WriteString(claims.String())
		b.WriteString("\n")
	}
	writeText(w, http.StatusOK, b.String())
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	st := s.health.Status(r.Context())
	code := http.StatusOK
	if st.Status != StateUp {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, st)
}

func (s *Server) getProtected(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeText(w, http.StatusUnauthorized, "unauthorized\n")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "hello, " + claims.Name,
		"issuer":  claims.Issuer,
		"aud":     claims.Audience,
	})
}

// clientAllowed writes 429 or 503 for a limiter error and reports whether the
// request may proceed.
func (s *Server) clientAllowed(w http.ResponseWriter, r *http.Request, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, clientrate.ErrRateLimited):
		w.Header().Set("Retry-After", "60")
		writeText(w, http.StatusTooManyRequests, "Too many requests\n")
	default:
		s.logger.ErrorContext(r.Context(), "client rate limiter failed",
			slog.String("request_id", goJWT.RequestIDFromContext(r.Context())),
			slog.Any("err", err),
		)
		writeText(w, http.StatusServiceUnavailable, "Rate limiter unavailable\n")
	}
	return false
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// withRequestContext assigns a request id, records the client IP for audit
// events and writes one access log line per request.
func (s *Server) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		ctx := goJWT.WithRequestID(r.Context(), id)
		ctx = goJWT.WithClientIP(ctx, clientIP(r))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		s.logger.InfoContext(ctx, "http request",
			slog.String("request_id", id),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
