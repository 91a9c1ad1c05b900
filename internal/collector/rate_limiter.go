package collector

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kurihiro0119/commit-cadence/internal/logger"
)

const (
	// GitHub's authenticated hourly quota
	defaultQuota = 5000
	// Below this many remaining calls the limiter waits for the reset
	lowWaterMark = 10
)

// RateLimiter manages GitHub API rate limiting
type RateLimiter interface {
	Wait(ctx context.Context) error
	CheckLimit() (remaining int, resetTime time.Time)
	UpdateLimit(remaining int, resetTime time.Time)
}

// githubRateLimiter spaces requests with a token bucket and honours GitHub's quota headers
type githubRateLimiter struct {
	mu        sync.Mutex
	remaining int
	resetTime time.Time
	spacing   *rate.Limiter
}

// NewRateLimiter creates a limiter allowing one request per minDelay
func NewRateLimiter(minDelay time.Duration) RateLimiter {
	limit := rate.Inf
	if minDelay > 0 {
		limit = rate.Every(minDelay)
	}
	return &githubRateLimiter{
		remaining: defaultQuota,
		resetTime: time.Now().Add(time.Hour),
		spacing:   rate.NewLimiter(limit, 1),
	}
}

// Wait waits until it's safe to make another API call
func (r *githubRateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	remaining, resetTime := r.remaining, r.resetTime
	r.mu.Unlock()

	if remaining <= lowWaterMark {
		if waitDuration := time.Until(resetTime); waitDuration > 0 {
			logger.Warn("GitHub rate limit low, waiting for reset",
				zap.Int("remaining", remaining),
				zap.Duration("wait", waitDuration.Round(time.Second)),
			)
			timer := time.NewTimer(waitDuration)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		r.mu.Lock()
		r.remaining = defaultQuota
		r.resetTime = time.Now().Add(time.Hour)
		r.mu.Unlock()
	}

	return r.spacing.Wait(ctx)
}

// CheckLimit returns the current rate limit status
func (r *githubRateLimiter) CheckLimit() (remaining int, resetTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining, r.resetTime
}

// UpdateLimit updates the rate limit from API response headers
func (r *githubRateLimiter) UpdateLimit(remaining int, resetTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remaining = remaining
	r.resetTime = resetTime
}
