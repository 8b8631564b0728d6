package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds rate limiter tuning parameters. A zero Max disables that limit.
type Config struct {
	MaxIssuePerWindow     int
	IssueWindow           time.Duration
	MaxVerifyFailures     int
	VerifyFailureCooldown time.Duration
}

// Limiter enforces per-client issuance and verification-failure budgets
// using Redis counters shared by every server instance.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a rate [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// AllowIssue counts one issuance for client and reports ErrRateLimited once
// the window budget is exceeded.
func (l *Limiter) AllowIssue(ctx context.Context, client string) error {
	if l == nil || l.config.MaxIssuePerWindow <= 0 || client == "" {
		return nil
	}

	count, err := l.incrementWithTTL(ctx, issueKey(client), l.config.IssueWindow)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxIssuePerWindow) {
		return ErrRateLimited
	}
	return nil
}

// CheckVerify reports ErrRateLimited while client is cooling down after too
// many failed verifications. It does not count the attempt.
func (l *Limiter) CheckVerify(ctx context.Context, client string) error {
	if l == nil || l.config.MaxVerifyFailures <= 0 || client == "" {
		return nil
	}
	return l.checkCounter(ctx, verifyKey(client), l.config.MaxVerifyFailures)
}

// RecordVerifyFailure counts a token that failed to verify for client.
func (l *Limiter) RecordVerifyFailure(ctx context.Context, client string) error {
	if l == nil || l.config.MaxVerifyFailures <= 0 || client == "" {
		return nil
	}

	count, err := l.incrementWithTTL(ctx, verifyKey(client), l.config.VerifyFailureCooldown)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxVerifyFailures) {
		return ErrRateLimited
	}
	return nil
}

// VerifyFailures returns the current failure count for client. Missing keys
// return zero.
func (l *Limiter) VerifyFailures(ctx context.Context, client string) (int, error) {
	if l == nil || client == "" {
		return 0, nil
	}
	count, err := l.redis.Get(ctx, verifyKey(client)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

func (l *Limiter) checkCounter(ctx context.Context, key string, maxAttempts int) error {
	count, err := l.redis.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if count >= int64(maxAttempts) {
		return ErrRateLimited
	}

	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}

func issueKey(client string) string {
	return "jri:" + client
}

func verifyKey(client string) string {
	return "jrv:" + client
}
