package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stockscope/observability"
)

// RetryConfig is the single retry policy shared by every adapter.
// MaxAttempts counts the initial call, so 3 means two retries.
type RetryConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// Retryable decides whether a failure is transient. A nil predicate
	// retries everything.
	Retryable func(error) bool
}

// DefaultRetryConfig retries transient failures (HTTP 429, network
// errors) up to 3 attempts with exponential backoff.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:    3,
	InitialBackoff: 500 * time.Millisecond,
	MaxBackoff:     5 * time.Second,
	Retryable:      IsRetryable,
}

// IsRetryable reports whether an error is worth retrying: network
// failures and HTTP 429 are, classified adapter errors like
// INVALID_SYMBOL or DATA_FORMAT_ERROR are not.
func IsRetryable(err error) bool {
	// Quota signals belong to the rate limiter, which retries them with
	// full-delay spacing.
	if errors.Is(err, ErrThrottled) {
		return false
	}
	switch CodeOf(err) {
	case ErrInvalidSymbol, ErrDataFormat, ErrConfiguration, ErrAPI:
		return false
	}
	return true
}

// WithRetry runs fn until it succeeds, the retryable predicate rejects
// the failure, or attempts are exhausted.
func WithRetry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	backoff := cfg.InitialBackoff

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
			case <-time.After(backoff):
			}

			backoff *= 2
			if backoff > cfg.MaxBackoff {
				backoff = cfg.MaxBackoff
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if cfg.Retryable != nil && !cfg.Retryable(err) {
			return err
		}
		if attempt < cfg.MaxAttempts {
			observability.Warn("retrying after transient failure",
				"attempt", attempt,
				"max_attempts", cfg.MaxAttempts,
				"error", err)
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}
