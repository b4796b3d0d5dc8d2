package oauth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Default limits for the token endpoint. Google's quota for the refresh
// grant is generous, but a refresh storm (many identities going stale at
// once) should never hammer the endpoint.
const (
	defaultRequestsPerSecond = 5.0
	defaultBurstSize         = 10
)

// RateLimiter limits outbound calls to the token endpoint using a token
// bucket, with an additional backoff window while the provider is returning
// 429s.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// NewRateLimiter creates a rate limiter with the default token-endpoint
// limits.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), defaultBurstSize),
	}
}

// Wait blocks until a request can be made without exceeding the rate limit,
// respecting any backoff window set by RecordRateLimit.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimit opens a backoff window after the provider returned 429.
// With no Retry-After hint, a short conservative window applies.
func (r *RateLimiter) RecordRateLimit(retryAfter time.Duration) {
	if retryAfter <= 0 {
		retryAfter = 2 * time.Second
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	until := time.Now().Add(retryAfter)
	if until.After(r.retryAt) {
		r.retryAt = until
	}
}
