package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stock-dashboard/observability"
)

type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig makes a single attempt; failed quote lookups are surfaced, not retried
var DefaultRetryConfig = RetryConfig{
	MaxRetries:     0,
	InitialBackoff: 100 * time.Millisecond,
	MaxBackoff:     5 * time.Second,
}

// WithRetry calls fn until it succeeds or MaxRetries extra attempts are used.
// Errors that another attempt cannot fix end the loop immediately.
func WithRetry(ctx context.Context, config RetryConfig, fn func() error) error {
	var lastErr error
	backoff := config.InitialBackoff

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
			case <-time.After(backoff):
			}

			backoff *= 2
			if backoff > config.MaxBackoff {
				backoff = config.MaxBackoff
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}

		lastErr = err
		if attempt < config.MaxRetries {
			observability.Warn("retry attempt failed",
				"attempt", attempt+1,
				"max_retries", config.MaxRetries,
				"error", err)
		}
	}

	if config.MaxRetries == 0 {
		return lastErr
	}
	return fmt.Errorf("failed after %d retries: %w", config.MaxRetries, lastErr)
}

func retryable(err error) bool {
	return !errors.Is(err, ErrServiceUnavailable) &&
		!errors.Is(err, ErrQuoteNotFound) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}
