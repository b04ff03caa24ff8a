// Package resilience provides the circuit breaker and retry primitives
// shared by the LLM client, route provider, and retrieval agents.
package resilience

import (
	"context"
	"time"

	"github.com/driveguide/enrichpipe/core"
)

// Backoff selects the delay formula between attempts: linear is
// 1·(attempt+1); exponential is 0.5·2^attempt; both capped by timeout.
type Backoff string

const (
	BackoffLinear      Backoff = "linear"
	BackoffExponential Backoff = "exponential"
)

// ComputeBackoff returns the delay before the given zero-based attempt,
// capped by timeout.
func ComputeBackoff(backoff Backoff, attempt int, timeout time.Duration) time.Duration {
	var d time.Duration
	switch backoff {
	case BackoffLinear:
		d = time.Duration(attempt+1) * time.Second
	default: // exponential
		mult := 1 << attempt // 2^attempt
		d = time.Duration(float64(500*time.Millisecond) * float64(mult))
	}
	if d > timeout {
		return timeout
	}
	return d
}

// RetryConfig governs one retryable call.
type RetryConfig struct {
	MaxAttempts int
	Backoff     Backoff
	Timeout     time.Duration // per-attempt timeout, also the backoff cap
}

// Retry runs fn up to MaxAttempts times, applying a per-attempt timeout and
// sleeping ComputeBackoff between attempts. It returns the last error if
// every attempt failed. fn receives a context scoped to the per-attempt
// timeout so it can bound its own blocking I/O.
func Retry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		err := fn(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == cfg.MaxAttempts-1 {
			break
		}
		delay := ComputeBackoff(cfg.Backoff, attempt, cfg.Timeout)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}

// RetryWithBreaker runs fn under the breaker once per attempt, not once
// around the whole retry loop: the breaker observes every individual
// attempt's outcome, and a breaker-open rejection on any attempt aborts
// the remaining attempts of this call immediately rather than retrying
// against a tripped breaker.
func RetryWithBreaker(ctx context.Context, cfg RetryConfig, cb *CircuitBreaker, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		err := cb.Call(func() error {
			return fn(attemptCtx)
		})
		cancel()
		if err == nil {
			return nil
		}
		if core.IsBreakerOpen(err) {
			return err
		}
		lastErr = err

		if attempt == cfg.MaxAttempts-1 {
			break
		}
		delay := ComputeBackoff(cfg.Backoff, attempt, cfg.Timeout)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}
