// Package ratelimit enforces a fixed-window request ceiling per client
// key. Counting state lives behind the Store interface so deployments can
// pick in-memory windows or durable ones backed by the conversion store.
package ratelimit

import (
	"fmt"
	"time"
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns how long the client should wait before retrying,
// measured from now. Zero when the request was allowed.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	if d.Allowed {
		return 0
	}
	wait := d.ResetAt.Sub(now)
	if wait < 0 {
		return 0
	}
	return wait
}

// Store is the counting backend. Take must be atomic per key: reset the
// window when now is at or past the stored reset time, deny without
// incrementing when the count has reached limit, and increment otherwise.
type Store interface {
	Take(key string, now time.Time, window time.Duration, limit int) (allowed bool, count int, resetAt time.Time, err error)
}

// Config holds the admission policy.
type Config struct {
	// Window is the fixed counting window.
	Window time.Duration

	// FreeLimit is the per-window ceiling for anonymous clients.
	FreeLimit int

	// ElevatedLimit is the per-window ceiling for authenticated clients.
	ElevatedLimit int
}

// DefaultConfig returns the production admission policy.
func DefaultConfig() Config {
	return Config{
		Window:        time.Hour,
		FreeLimit:     3,
		ElevatedLimit: 5,
	}
}

// Validate checks the policy invariants.
func (c Config) Validate() error {
	if c.Window <= 0 {
		return fmt.Errorf("rate limit window must be positive, got %s", c.Window)
	}
	if c.FreeLimit <= 0 || c.ElevatedLimit <= 0 {
		return fmt.Errorf("rate limits must be positive, got free=%d elevated=%d", c.FreeLimit, c.ElevatedLimit)
	}
	return nil
}

// Limiter applies the admission policy over a Store.
type Limiter struct {
	store Store
	cfg   Config

	// now is swapped in tests.
	now func() time.Time
}

// New creates a Limiter over the given store.
func New(store Store, cfg Config) *Limiter {
	return &Limiter{store: store, cfg: cfg, now: time.Now}
}

// Allow admits or denies one request for key. Elevated clients get the
// higher ceiling. A store failure is returned as an error rather than
// silently admitting.
func (l *Limiter) Allow(key string, elevated bool) (Decision, error) {
	limit := l.cfg.FreeLimit
	if elevated {
		limit = l.cfg.ElevatedLimit
	}

	now := l.now()
	allowed, count, resetAt, err := l.store.Take(key, now, l.cfg.Window, limit)
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit store: %w", err)
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}
