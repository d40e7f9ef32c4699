package helpers

import (
	"context"
	"time"

	"sjsage522/refurbworker/pkg/errors"
)

// RetryPolicy bounds how often a fetch is attempted and how long to wait between attempts.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// Do runs fn until it succeeds, returns a non-retryable error, the attempt budget is spent
// or ctx is done. The last error is returned unchanged.
func (p RetryPolicy) Do(ctx context.Context, fn func(attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		lastErr = fn(attempt)
		if lastErr == nil || !errors.IsRetryable(lastErr) {
			return lastErr
		}

		if attempt < attempts && p.Backoff > 0 {
			select {
			case <-ctx.Done():
				return lastErr
			case <-time.After(p.Backoff):
			}
		}
	}
	return lastErr
}
