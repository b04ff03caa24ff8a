package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeBackoffLinearAndExponentialCappedByTimeout(t *testing.T) {
	assert.Equal(t, 1*time.Second, ComputeBackoff(BackoffLinear, 0, 10*time.Second))
	assert.Equal(t, 2*time.Second, ComputeBackoff(BackoffLinear, 1, 10*time.Second))
	assert.Equal(t, 1*time.Second, ComputeBackoff(BackoffLinear, 2, time.Second))

	assert.Equal(t, 500*time.Millisecond, ComputeBackoff(BackoffExponential, 0, 10*time.Second))
	assert.Equal(t, 1*time.Second, ComputeBackoff(BackoffExponential, 1, 10*time.Second))
	assert.Equal(t, 2*time.Second, ComputeBackoff(BackoffExponential, 2, 10*time.Second))
	assert.Equal(t, 1*time.Second, ComputeBackoff(BackoffExponential, 5, time.Second))
}

func TestRetrySucceedsOnLaterAttempt(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), RetryConfig{MaxAttempts: 3, Backoff: BackoffExponential, Timeout: 50 * time.Millisecond}, func(ctx context.Context) error {
		attempts++
		if attempts < 2 {
			return errors.New("transient")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestRetryExhaustsAndReturnsLastError(t *testing.T) {
	attempts := 0
	wantErr := errors.New("persistent")
	err := Retry(context.Background(), RetryConfig{MaxAttempts: 3, Backoff: BackoffLinear, Timeout: 5 * time.Millisecond}, func(ctx context.Context) error {
		attempts++
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBreakerShortCircuitsWithoutRetrying(t *testing.T) {
	cb := NewCircuitBreaker("svc", 1, time.Minute, nil, nil)
	_ = cb.Call(func() error { return errors.New("boom") }) // opens breaker

	attempts := 0
	err := RetryWithBreaker(context.Background(), RetryConfig{MaxAttempts: 3, Backoff: BackoffLinear, Timeout: 5 * time.Millisecond}, cb, func(ctx context.Context) error {
		attempts++
		return nil
	})
	assert.Error(t, err)
	assert.Equal(t, 0, attempts, "breaker-rejected calls must not retry")
}
