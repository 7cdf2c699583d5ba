package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stockscope/observability"
)

// ErrThrottled marks a provider-reported quota signal (for Alpha
// Vantage, a "Note" payload). The RateLimiter retries these in place;
// anything else propagates immediately.
var ErrThrottled = errors.New("provider quota exhausted")

// RateLimiter serializes calls to one quota-constrained provider and
// enforces a minimum spacing between them. Each provider gets its own
// instance so independent quotas cannot cross-contaminate.
type RateLimiter struct {
	delay       time.Duration
	maxAttempts int

	// slot is a single-capacity channel used as the serialization
	// point. Goroutines blocked sending on it are released in arrival
	// order, which gives queued callers FIFO execution.
	slot chan struct{}

	// lastCall is touched only while holding the slot, so the
	// check-elapsed-then-update step is atomic with respect to other
	// queued tasks.
	lastCall time.Time

	now func() time.Time
}

// AlphaVantageDelay spaces calls for the free-tier "5 calls per minute"
// quota, with headroom.
const AlphaVantageDelay = 12 * time.Second

// NewRateLimiter creates a limiter with the given minimum inter-call
// spacing. Throttle-classified failures are retried up to 3 attempts.
func NewRateLimiter(delay time.Duration) *RateLimiter {
	return &RateLimiter{
		delay:       delay,
		maxAttempts: 3,
		slot:        make(chan struct{}, 1),
		now:         time.Now,
	}
}

// Do queues fn behind earlier callers, waits out the spacing window,
// and runs it. Failures wrapping ErrThrottled wait one full delay and
// retry, up to the attempt budget; all other failures propagate
// immediately. The result of the final attempt is returned.
func (l *RateLimiter) Do(ctx context.Context, fn func() error) error {
	select {
	case l.slot <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("cancelled while queued for rate limiter: %w", ctx.Err())
	}
	defer func() { <-l.slot }()

	var lastErr error
	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		if err := l.pause(ctx); err != nil {
			return err
		}

		err := fn()
		// Exactly one update per underlying provider call.
		l.lastCall = l.now()

		if err == nil {
			return nil
		}
		lastErr = err

		if !errors.Is(err, ErrThrottled) {
			return err
		}
		observability.Warn("provider throttled, backing off",
			"attempt", attempt,
			"max_attempts", l.maxAttempts,
			"delay", l.delay)
	}

	return fmt.Errorf("quota retries exhausted after %d attempts: %w", l.maxAttempts, lastErr)
}

// pause suspends until the configured spacing has elapsed since the
// previous call completed.
func (l *RateLimiter) pause(ctx context.Context) error {
	if l.lastCall.IsZero() {
		return nil
	}
	wait := l.delay - l.now().Sub(l.lastCall)
	if wait <= 0 {
		return nil
	}

	observability.Debug("rate limiting provider call", "wait", wait)
	observability.GetMetrics().ObserveRateLimitWait(wait)

	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return fmt.Errorf("cancelled while waiting out rate limit: %w", ctx.Err())
	}
}

// Delay returns the configured minimum spacing between calls.
func (l *RateLimiter) Delay() time.Duration { return l.delay }
