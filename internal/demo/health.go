package demo

import (
	"context"
	"sync"
	"time"
)

const (
	StateUp   = "UP"
	StateDown = "DOWN"
)

// HealthCheck reports a problem as a non-nil error.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status    string   `json:"status"`
	Details   []string `json:"details"`
	Timestamp string   `json:"timestamp"`
}

// Health aggregates named checks; the service is UP only when all pass.
type Health struct {
	mu     sync.RWMutex
	checks []HealthCheck
	now    func() time.Time
}

func NewHealth(checks ...HealthCheck) *Health {
	return &Health{checks: checks, now: time.Now}
}

// Add registers another check.
func (h *Health) Add(c HealthCheck) {
	h.mu.Lock()
	h.checks = append(h.checks, c)
	h.mu.Unlock()
}

// Status runs every check and reports the combined state.
func (h *Health) Status(ctx context.Context) HealthStatus {
	h.mu.RLock()
	checks := append([]HealthCheck(nil), h.checks...)
	h.mu.RUnlock()

	st := HealthStatus{Status: StateUp, Details: []string{}, Timestamp: h.now().UTC().Format(time.RFC3339)}
	for _, c := range checks {
		if err := c.Check(ctx); err != nil {
			st.Status = StateDown
			st.Details = append(st.Details, c.Name+": "+err.Error())
		}
	}
	return st
}
