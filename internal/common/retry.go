package common

import (
	"context"
	"time"
)

// RetryConfig controls the retry wrapper shared by the API clients.
type RetryConfig struct {
	MaxAttempts int           // total attempts, including the first
	Backoff     time.Duration // base delay; attempt n waits n * Backoff
}

// DefaultRetryConfig matches the provider rate-limit behavior we see in
// practice: three attempts with a growing pause between them.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts: 3,
	Backoff:     5 * time.Second,
}

// Retry runs op until it succeeds, returns a non-retryable error, or the
// attempt budget is exhausted. The backoff grows linearly with the attempt
// number and respects context cancellation.
func Retry(ctx context.Context, cfg RetryConfig, retryable func(error) bool, op func(ctx context.Context) error) error {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = op(ctx)
		if err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		wait := time.Duration(attempt) * cfg.Backoff
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return err
}
