package helpers

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"sjsage522/refurbworker/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicyStopsOnSuccess(t *testing.T) {
	attempts := 0
	err := RetryPolicy{MaxAttempts: 5}.Do(context.Background(), func(int) error {
		attempts++
		if attempts == 2 {
			return nil
		}
		return errors.NewNetwork("test", "flaky", nil)
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestRetryPolicyStopsOnNonRetryable(t *testing.T) {
	attempts := 0
	err := RetryPolicy{MaxAttempts: 5}.Do(context.Background(), func(int) error {
		attempts++
		return errors.NewRateLimit("test", time.Minute)
	})
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryPolicyWaitsBetweenAttempts(t *testing.T) {
	start := time.Now()
	attempts := 0
	err := RetryPolicy{MaxAttempts: 3, Backoff: 20 * time.Millisecond}.Do(context.Background(), func(int) error {
		attempts++
		return stderrors.New("connection refused")
	})
	assert.EqualError(t, err, "connection refused")
	assert.Equal(t, 3, attempts)
	// two waits between three attempts
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestRetryPolicyZeroAttemptsRunsOnce(t *testing.T) {
	attempts := 0
	_ = RetryPolicy{}.Do(context.Background(), func(int) error {
		attempts++
		return stderrors.New("down")
	})
	assert.Equal(t, 1, attempts)
}

func TestRetryPolicyHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := RetryPolicy{MaxAttempts: 10, Backoff: time.Hour}.Do(ctx, func(int) error {
		attempts++
		cancel()
		return stderrors.New("down")
	})
	assert.EqualError(t, err, "down")
	assert.Equal(t, 1, attempts)
}
