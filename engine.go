package goJWT

import (
	"context"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrEthical07/goJWT/jwt"
)

// Engine issues and verifies tokens with one configured RSA key pair.
//
// Engine instances are immutable after [Builder.Build]; all methods are safe
// for concurrent use.
type Engine struct {
	config    Config
	signKey   *rsa.PrivateKey
	verifyKey *rsa.PublicKey
	header    jwt.Header
	policy    jwt.Policy
	metrics   *Metrics
	audit     *auditDispatcher
	logger    *slog.Logger
	now       func() time.Time
}

// Close flushes and stops the audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns how many audit events were dropped on a full buffer.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// CanSign reports whether a private key is configured.
func (e *Engine) CanSign() bool {
	return e != nil && e.signKey != nil
}

// CanVerify reports whether a public key is configured.
func (e *Engine) CanVerify() bool {
	return e != nil && e.verifyKey != nil
}

// Sign signs claims exactly as given with the configured private key.
func (e *Engine) Sign(ctx context.Context, claims jwt.Claims) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	if e.signKey == nil {
		return "", ErrSigningKeyMissing
	}

	start := time.Now()
	token, err := jwt.Sign(e.header, claims, e.signKey)
	e.metrics.Observe(MetricSignLatency, time.Since(start))
	if err != nil {
		e.metrics.Inc(MetricSignFailure)
		e.logger.WarnContext(ctx, "token signing failed",
			slog.String("request_id", RequestIDFromContext(ctx)),
			slog.String("kid", e.header.KeyID),
			slog.Any("err", err),
		)
		e.emitAudit(ctx, AuditEvent{EventType: AuditTokenIssued, Subject: claims.Name, Issuer: claims.Issuer, Error: err.Error()})
		return "", err
	}

	e.metrics.Inc(MetricSignSuccess)
	e.logger.DebugContext(ctx, "token signed",
		slog.String("request_id", RequestIDFromContext(ctx)),
		slog.String("kid", e.header.KeyID),
		slog.String("fingerprint", fingerprint(token)),
	)
	e.emitAudit(ctx, AuditEvent{
		EventType:   AuditTokenIssued,
		Subject:     claims.Name,
		Issuer:      claims.Issuer,
		Fingerprint: fingerprint(token),
		Success:     true,
	})
	return token, nil
}

// Issue builds a claim set from req and IssueConfig, stamping iat, nbf and
// exp from the engine clock, and signs it.
func (e *Engine) Issue(ctx context.Context, req IssueRequest) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}

	ttl := req.TTL
	if ttl <= 0 {
		ttl = e.config.Issue.TTL
	}
	aud := req.Audience
	if len(aud) == 0 {
		aud = e.config.Issue.Audience
	}

	now := e.now()
	claims := jwt.Claims{
		Name:      req.Name,
		Issuer:    e.config.Issue.Issuer,
		Audience:  append([]string(nil), aud...),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now.Add(-e.config.Issue.NotBeforeSkew)),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return e.Sign(ctx, claims)
}

// Verify reports whether token was signed by the configured key pair.
// It does not check exp, nbf, iss or aud; see [Engine.Validate].
func (e *Engine) Verify(ctx context.Context, token string) (bool, error) {
	if e == nil {
		return false, ErrEngineNotReady
	}
	if e.verifyKey == nil {
		return false, ErrVerifyKeyMissing
	}

	start := time.Now()
	ok, err := jwt.Verify(token, e.verifyKey)
	e.metrics.Observe(MetricVerifyLatency, time.Since(start))

	switch {
	case err != nil:
		e.metrics.Inc(MetricVerifyMalformed)
		e.logger.DebugContext(ctx, "token rejected as malformed",
			slog.String("request_id", RequestIDFromContext(ctx)),
			slog.Any("err", err),
		)
		e.emitAudit(ctx, AuditEvent{EventType: AuditTokenRejected, Fingerprint: fingerprint(token), Error: err.Error()})
	case !ok:
		e.metrics.Inc(MetricVerifyRejected)
		e.logger.WarnContext(ctx, "token signature mismatch",
			slog.String("request_id", RequestIDFromContext(ctx)),
			slog.String("fingerprint", fingerprint(token)),
		)
		e.emitAudit(ctx, AuditEvent{EventType: AuditTokenRejected, Fingerprint: fingerprint(token), Error: ErrTokenNotVerified.Error()})
	default:
		e.metrics.Inc(MetricVerifySuccess)
		e.emitAudit(ctx, AuditEvent{EventType: AuditTokenVerified, Fingerprint: fingerprint(token), Success: true})
	}
	return ok, err
}

// Decode returns the claims of token without checking the signature. The
// result must not be trusted unless Verify returned true for the same token.
func (e *Engine) Decode(token string) (jwt.Claims, error) {
	claims, err := jwt.Decode(token)
	if err != nil && e != nil {
		e.metrics.Inc(MetricDecodeFailure)
	}
	return claims, err
}

// Validate verifies the signature, decodes the claims and applies the
// configured policy. It returns [ErrTokenNotVerified] for a signature
// mismatch and wraps [ErrPolicyViolation] together with the specific
// jwt policy error.
func (e *Engine) Validate(ctx context.Context, token string) (*ValidateResult, error) {
	ok, err := e.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTokenNotVerified
	}

	header, err := jwt.DecodeHeader(token)
	if err != nil {
		e.metrics.Inc(MetricDecodeFailure)
		return nil, err
	}
	if header.Algorithm != jwt.AlgRS256 {
		e.metrics.Inc(MetricPolicyRejected)
		return nil, fmt.Errorf("%w: %w: %q", ErrPolicyViolation, jwt.ErrUnsupportedAlgorithm, header.Algorithm)
	}
	claims, err := e.Decode(token)
	if err != nil {
		return nil, err
	}

	if err := e.policy.Check(claims, e.now()); err != nil {
		e.metrics.Inc(MetricPolicyRejected)
		e.logger.InfoContext(ctx, "token failed policy",
			slog.String("request_id", RequestIDFromContext(ctx)),
			slog.String("iss", claims.Issuer),
			slog.Any("err", err),
		)
		return nil, fmt.Errorf("%w: %w", ErrPolicyViolation, err)
	}

	res := &ValidateResult{Header: header, Claims: claims}
	if !claims.ExpiresAt.IsZero() {
		// Check already parsed exp successfully.
		res.ExpiresAt, _ = claims.ExpiresAt.Time()
	}
	return res, nil
}

func (e *Engine) emitAudit(ctx context.Context, event AuditEvent) {
	if e == nil || e.audit == nil {
		return
	}
	event.Timestamp = e.now()
	event.RequestID = RequestIDFromContext(ctx)
	event.IP = clientIPFromContext(ctx)
	event.KeyID = e.header.KeyID
	e.audit.Emit(ctx, event)
}

// fingerprint identifies a token in logs and audit events without exposing it.
func fingerprint(token string) string {
	if token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}

// IsStructuralError reports whether err came from malformed input or key
// material rather than a signature mismatch or policy failure.
func IsStructuralError(err error) bool {
	return errors.Is(err, jwt.ErrMalformedToken) ||
		errors.Is(err, jwt.ErrMalformedSegment) ||
		errors.Is(err, jwt.ErrMalformedJSON) ||
		errors.Is(err, jwt.ErrUnexpectedShape) ||
		errors.Is(err, jwt.ErrInvalidKey)
}
