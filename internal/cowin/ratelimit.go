package cowin

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter enforces the provider's published call budget. A token bucket
// spaces calls evenly and a window counter caps the total per window.
type RateLimiter struct {
	limiter  *rate.Limiter
	count    atomic.Int64
	maxCalls int64
	window   time.Duration
	resetAt  time.Time
	mu       sync.Mutex
	nowFunc  func() time.Time
}

// RateLimiterOption configures the RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithRateLimiterNowFunc overrides the time function for testing.
func WithRateLimiterNowFunc(f func() time.Time) RateLimiterOption {
	return func(r *RateLimiter) {
		r.nowFunc = f
	}
}

// NewRateLimiter allows at most calls per window, spaced at window/calls
// with the given burst. The window restarts once it has fully elapsed.
func NewRateLimiter(
	calls int,
	window time.Duration,
	burst int,
	opts ...RateLimiterOption,
) *RateLimiter {
	if calls <= 0 {
		calls = 1
	}
	if burst <= 0 {
		burst = 1
	}
	r := &RateLimiter{
		limiter:  rate.NewLimiter(rate.Every(window/time.Duration(calls)), burst),
		maxCalls: int64(calls),
		window:   window,
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.resetAt = r.nowFunc().Add(window)
	return r
}

// Wait blocks until the token bucket admits a call or ctx is done.
// Returns ErrBudgetExhausted once the window's calls are used up.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.checkReset()

	if used := r.count.Load(); used >= r.maxCalls {
		return fmt.Errorf("%w (%d/%d, resets at %s)",
			ErrBudgetExhausted, used, r.maxCalls, r.ResetAt().Format(time.TimeOnly))
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	r.count.Add(1)
	return nil
}

// Count returns the number of calls made in the current window.
func (r *RateLimiter) Count() int64 {
	return r.count.Load()
}

// Remaining returns the calls left in the current window.
func (r *RateLimiter) Remaining() int64 {
	return max(r.maxCalls-r.count.Load(), 0)
}

// ResetAt returns when the current window ends.
func (r *RateLimiter) ResetAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resetAt
}

func (r *RateLimiter) checkReset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowFunc()
	if now.After(r.resetAt) {
		r.count.Store(0)
		r.resetAt = now.Add(r.window)
	}
}
