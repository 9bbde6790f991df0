package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultRate is the proactive throttle rate in requests per second.
	DefaultRate = 10.0

	// DefaultBurst is the token bucket size.
	DefaultBurst = 5

	// MinBuffer is the minimum remaining requests before waiting for reset.
	MinBuffer = 5
)

// Remaining-quota headers. Okta uses the dashed form.
var (
	remainingHeaders = []string{"X-Rate-Limit-Remaining", "X-RateLimit-Remaining"}
	resetHeaders     = []string{"X-Rate-Limit-Reset", "X-RateLimit-Reset"}
)

// RateLimiter implements dual-strategy rate limiting.
type RateLimiter struct {
	mu        sync.Mutex
	remaining int           // From API header, -1 when unknown
	resetTime time.Time     // From API header
	bucket    *rate.Limiter // Proactive throttling
	minBuffer int           // Reserve requests
}

// NewRateLimiter creates a rate limiter with proactive throttling.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if rps <= 0 {
		rps = DefaultRate
	}
	if burst <= 0 {
		burst = DefaultBurst
	}
	return &RateLimiter{
		remaining: -1,
		bucket:    rate.NewLimiter(rate.Limit(rps), burst),
		minBuffer: MinBuffer,
	}
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	remaining := r.remaining
	resetTime := r.resetTime
	r.mu.Unlock()

	if remaining >= 0 && remaining < r.minBuffer && time.Now().Before(resetTime) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(resetTime)):
		}
	}
	return nil
}

// UpdateFromResponse updates rate limit state from response headers.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, h := range remainingHeaders {
		if v := resp.Header.Get(h); v != "" {
			if val, err := strconv.Atoi(v); err == nil {
				r.remaining = val
			}
			break
		}
	}
	for _, h := range resetHeaders {
		if v := resp.Header.Get(h); v != "" {
			if val, err := strconv.ParseInt(v, 10, 64); err == nil {
				r.resetTime = time.Unix(val, 0)
			}
			break
		}
	}
}

// Remaining returns the last reported remaining requests, or -1.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

// ResetTime returns the rate limit reset time.
func (r *RateLimiter) ResetTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resetTime
}
