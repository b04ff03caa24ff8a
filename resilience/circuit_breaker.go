package resilience

import (
	"sync"
	"time"

	"github.com/driveguide/enrichpipe/core"
)

type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

// CircuitBreaker is a per-named-upstream 3-state latch: closed, open, and
// half-open. State transitions are serialized under mu; only the caller
// that moves the breaker from open to half-open is admitted as the trial,
// and any caller that finds it already half-open is rejected. Uses a
// consecutive-failure trip policy rather than a sliding error-rate window.
type CircuitBreaker struct {
	name             string
	failureThreshold int
	timeout          time.Duration
	logger           core.Logger
	metrics          core.MetricsSink

	mu               sync.Mutex
	state            breakerState
	failureCount     int
	openedAt         time.Time
	halfOpenInFlight bool
}

// NewCircuitBreaker constructs a breaker for one named upstream.
func NewCircuitBreaker(name string, failureThreshold int, timeout time.Duration, logger core.Logger, metrics core.MetricsSink) *CircuitBreaker {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	return &CircuitBreaker{
		name: name, failureThreshold: failureThreshold, timeout: timeout,
		logger: logger, metrics: metrics, state: stateClosed,
	}
}

// canExecute transitions open→half_open and claims the single trial slot as
// a side effect once the timeout has elapsed.
func (cb *CircuitBreaker) canExecute() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case stateClosed:
		return true
	case stateHalfOpen:
		// A trial is already in flight; reject every other arrival.
		return false
	case stateOpen:
		if time.Since(cb.openedAt) >= cb.timeout {
			cb.state = stateHalfOpen
			cb.halfOpenInFlight = true
			return true
		}
		return false
	}
	return false
}

// Call invokes fn if the breaker admits it, recording the outcome.
// Returns core.ErrBreakerOpen without invoking fn when rejected.
func (cb *CircuitBreaker) Call(fn func() error) error {
	if !cb.canExecute() {
		cb.recordMetric("rejected")
		return core.ErrBreakerOpen
	}

	err := fn()

	cb.mu.Lock()
	wasHalfOpen := cb.state == stateHalfOpen
	if err != nil {
		cb.onFailureLocked()
	} else {
		cb.onSuccessLocked()
	}
	if wasHalfOpen {
		cb.halfOpenInFlight = false
	}
	cb.mu.Unlock()

	if err != nil {
		cb.recordMetric("failure")
	} else {
		cb.recordMetric("success")
	}
	return err
}

// onFailureLocked must be called with mu held.
func (cb *CircuitBreaker) onFailureLocked() {
	switch cb.state {
	case stateHalfOpen:
		cb.state = stateOpen
		cb.openedAt = time.Now()
		cb.logger.Warn("circuit breaker trial failed, reopening", map[string]interface{}{"breaker": cb.name})
	case stateClosed:
		cb.failureCount++
		if cb.failureCount >= cb.failureThreshold {
			cb.state = stateOpen
			cb.openedAt = time.Now()
			cb.logger.Warn("circuit breaker opened", map[string]interface{}{"breaker": cb.name, "failures": cb.failureCount})
		}
	}
}

// onSuccessLocked must be called with mu held.
func (cb *CircuitBreaker) onSuccessLocked() {
	switch cb.state {
	case stateHalfOpen:
		cb.state = stateClosed
		cb.failureCount = 0
		cb.logger.Info("circuit breaker closed after successful trial", map[string]interface{}{"breaker": cb.name})
	case stateClosed:
		cb.failureCount = 0
	}
}

func (cb *CircuitBreaker) recordMetric(outcome string) {
	if cb.metrics == nil {
		return
	}
	cb.metrics.Inc("circuit_breaker."+cb.name+"."+outcome, 1)
}

// State returns the current state as a string, for diagnostics/tests.
func (cb *CircuitBreaker) State() string {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	switch cb.state {
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}
