package core

import (
	"errors"
	"fmt"
)

// Sentinel errors, grouped by effect-based kind.
var (
	// ErrBreakerOpen is returned by a circuit-breaker-guarded call when the
	// breaker is open (or a half-open trial is already in flight).
	ErrBreakerOpen = errors.New("breaker open")

	// ErrBudgetExceeded is returned by the LLM client once cumulative token
	// usage has passed the configured budget.
	ErrBudgetExceeded = errors.New("llm token budget exceeded")

	// ErrRouteTooLarge is returned by the Live route provider when a leg has
	// more steps than the configured max_steps.
	ErrRouteTooLarge = errors.New("route validation failed: too many steps")

	// ErrRouteFetchFailed is returned when the Live route provider exhausts
	// its retries against the directions upstream.
	ErrRouteFetchFailed = errors.New("failed to fetch route from directions provider after retries")

	// ErrNoCandidates names the case where no search query produced any
	// candidate; the agent framework puts its text in the reason and error
	// of the unavailable result it returns, not the error value itself.
	ErrNoCandidates = errors.New("no candidates found")

	// ErrFetchFailed names a failed fetch of the selected candidate. The
	// agent framework reports that case with its own reason text and does
	// not return this value.
	ErrFetchFailed = errors.New("failed to fetch candidate")

	// ErrInvalidConfiguration marks a config value that failed schema
	// validation. Never fatal on its own: callers fall back to defaults.
	ErrInvalidConfiguration = errors.New("invalid configuration value")

	// ErrMissingCredentials marks a provider whose required secret is absent.
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrTimeout marks a bounded-wait that did not complete in time.
	ErrTimeout = errors.New("operation timeout")
)

// PipelineError wraps an underlying error with operation/kind/id context,
// supporting errors.Is/As through Unwrap.
type PipelineError struct {
	Op      string
	Kind    string
	ID      string
	Message string
	Err     error
}

func (e *PipelineError) Error() string {
	if e.Op != "" && e.Err != nil {
		if e.ID != "" {
			return fmt.Sprintf("%s [%s]: %v", e.Op, e.ID, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s error", e.Kind)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// NewPipelineError builds a PipelineError for the given op/kind, wrapping err.
func NewPipelineError(op, kind string, err error) *PipelineError {
	return &PipelineError{Op: op, Kind: kind, Err: err}
}

// IsBreakerOpen reports whether err (or its wrapped chain) is ErrBreakerOpen.
func IsBreakerOpen(err error) bool {
	return errors.Is(err, ErrBreakerOpen)
}

// IsBudgetExceeded reports whether err (or its wrapped chain) is
// ErrBudgetExceeded.
func IsBudgetExceeded(err error) bool {
	return errors.Is(err, ErrBudgetExceeded)
}

// IsConfigurationError reports whether err is a configuration problem.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) || errors.Is(err, ErrMissingCredentials)
}
