package google

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// APIName identifies a Google API for rate limiting purposes.
type APIName string

const (
	// APIDirectory is the Admin SDK Directory API.
	APIDirectory APIName = "directory"
	// APIReports is the Admin SDK Reports API.
	APIReports APIName = "reports"
)

// RateLimitConfig holds rate limiting configuration for an API.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultRateLimits are kept well below the Admin SDK per-user quotas.
var DefaultRateLimits = map[APIName]RateLimitConfig{
	APIDirectory: {RequestsPerSecond: 5.0, BurstSize: 10},
	APIReports:   {RequestsPerSecond: 2.0, BurstSize: 5},
}

// DefaultBackoff is used when a 429 carries no retry hint.
const DefaultBackoff = 60 * time.Second

// RateLimiter provides rate limiting for Google API requests.
// It uses a token bucket algorithm with a backoff window after 429 responses.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// NewRateLimiter creates a new rate limiter for the named API.
func NewRateLimiter(api APIName) *RateLimiter {
	cfg, ok := DefaultRateLimits[api]
	if !ok {
		cfg = RateLimitConfig{RequestsPerSecond: 5.0, BurstSize: 10}
	}
	return NewRateLimiterWithConfig(cfg)
}

// NewRateLimiterWithConfig creates a rate limiter with custom configuration.
func NewRateLimiterWithConfig(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by RecordRateLimitError.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimitError sets a backoff window after a 429 response.
func (r *RateLimiter) RecordRateLimitError(retryAfter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if retryAfter <= 0 {
		retryAfter = DefaultBackoff
	}
	r.retryAt = time.Now().Add(retryAfter)
}

// BackoffUntil returns the end of the current backoff window.
func (r *RateLimiter) BackoffUntil() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retryAt
}
