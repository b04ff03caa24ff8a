// Package llm implements the provider-agnostic LLM client (component D):
// a uniform query(prompt) contract over pluggable providers, with
// resilience.Retry-governed timeout/retry/backoff, prompt truncation, and
// cumulative token-budget tracking. Providers compose behind a single
// interface rather than forming an inheritance hierarchy.
package llm

import (
	"context"
	"sync"
	"time"

	"github.com/driveguide/enrichpipe/core"
	"github.com/driveguide/enrichpipe/resilience"
)

// Usage is the token accounting for one completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

func (u Usage) Total() int { return u.PromptTokens + u.CompletionTokens }

// Provider is the minimal "call once" contract each backend implements. No
// retry, breaker, or budget logic belongs here — Client governs all of
// that uniformly so every provider behaves identically under failure.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (text string, usage Usage, err error)
}

// Client wraps a Provider with the shared policy every LLM call in the
// pipeline must obey: a hard per-call timeout, retry with backoff, prompt
// truncation from the tail, and a cumulative token budget shared across
// every call the Client makes over its lifetime.
type Client struct {
	provider Provider
	logger   core.Logger
	metrics  core.MetricsSink

	retry RetryPolicy

	maxPromptChars int
	tokenBudget    int // 0 = unbounded

	mu          sync.Mutex
	tokensSpent int
}

// RetryPolicy configures Client's call to resilience.Retry.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     resilience.Backoff
	Timeout     time.Duration
}

// ClientOption configures optional Client behavior.
type ClientOption func(*Client)

func WithTokenBudget(budget int) ClientOption {
	return func(c *Client) { c.tokenBudget = budget }
}

func WithMaxPromptChars(n int) ClientOption {
	return func(c *Client) { c.maxPromptChars = n }
}

func WithMetrics(sink core.MetricsSink) ClientOption {
	return func(c *Client) { c.metrics = sink }
}

// NewClient builds a Client around provider, applying retry policy and any
// options. logger may be nil (becomes core.NoOpLogger{}).
func NewClient(provider Provider, retry RetryPolicy, logger core.Logger, opts ...ClientOption) *Client {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	c := &Client{
		provider:       provider,
		logger:         logger,
		retry:          retry,
		maxPromptChars: 12000,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string { return c.provider.Name() }

// Query truncates prompt to its leading maxPromptChars characters if
// needed, checks the budget, runs the retry loop
// around the provider's Complete, and accounts the resulting usage. The
// budget is checked only before dispatch, against the tokens already
// spent: the call that tips the budget over still completes and returns
// its text, but the next call is refused.
func (c *Client) Query(ctx context.Context, prompt string) (string, error) {
	if c.tokenBudget > 0 {
		c.mu.Lock()
		spent := c.tokensSpent
		c.mu.Unlock()
		if spent >= c.tokenBudget {
			return "", core.NewPipelineError("llm.Client.Query", "llm", core.ErrBudgetExceeded)
		}
	}

	prompt = truncate(prompt, c.maxPromptChars)

	var text string
	var usage Usage
	err := resilience.Retry(ctx, resilience.RetryConfig{
		MaxAttempts: c.retry.MaxAttempts,
		Backoff:     c.retry.Backoff,
		Timeout:     c.retry.Timeout,
	}, func(callCtx context.Context) error {
		t, u, err := c.provider.Complete(callCtx, prompt)
		if err != nil {
			return err
		}
		text, usage = t, u
		return nil
	})
	if err != nil {
		c.logger.Error("llm query failed", map[string]interface{}{"provider": c.provider.Name(), "error": err.Error()})
		if c.metrics != nil {
			c.metrics.Inc("llm."+c.provider.Name()+".errors", 1)
		}
		return "", core.NewPipelineError("llm.Client.Query", "llm", err)
	}

	c.mu.Lock()
	c.tokensSpent += usage.Total()
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.Inc("llm."+c.provider.Name()+".calls", 1)
		c.metrics.Inc("llm.tokens_total", float64(usage.Total()))
	}
	c.logger.Debug("llm query ok", map[string]interface{}{
		"provider": c.provider.Name(), "tokens": usage.Total(),
	})
	return text, nil
}

// TokensSpent reports the client's cumulative token usage so far.
func (c *Client) TokensSpent() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokensSpent
}

func truncate(s string, maxChars int) string {
	if maxChars <= 0 || len(s) <= maxChars {
		return s
	}
	return s[:maxChars]
}
