package rate

import "errors"

var (
	// ErrRateLimited is returned when a client has used up its window budget.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps any Redis failure while reading or updating a counter.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
