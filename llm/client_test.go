package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/driveguide/enrichpipe/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name     string
	text     string
	usage    Usage
	err      error
	failures int
	calls    int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Complete(ctx context.Context, prompt string) (string, Usage, error) {
	s.calls++
	if s.calls <= s.failures {
		return "", Usage{}, errors.New("transient upstream error")
	}
	if s.err != nil {
		return "", Usage{}, s.err
	}
	return s.text, s.usage, nil
}

func defaultRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Backoff: resilience.BackoffLinear, Timeout: 50 * time.Millisecond}
}

func TestQuerySucceedsAndAccumulatesTokens(t *testing.T) {
	p := &stubProvider{name: "mock", text: "hello", usage: Usage{PromptTokens: 10, CompletionTokens: 5}}
	c := NewClient(p, defaultRetry(), nil)

	out, err := c.Query(context.Background(), "a prompt")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, 15, c.TokensSpent())
}

func TestQueryRetriesOnTransientFailure(t *testing.T) {
	p := &stubProvider{name: "mock", text: "ok", failures: 1}
	c := NewClient(p, defaultRetry(), nil)

	out, err := c.Query(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 2, p.calls)
}

func TestQueryRefusesOnceBudgetExhausted(t *testing.T) {
	p := &stubProvider{name: "mock", text: "x", usage: Usage{PromptTokens: 100}}
	c := NewClient(p, defaultRetry(), nil, WithTokenBudget(50))

	_, err := c.Query(context.Background(), "first call spends 100, over budget")
	require.NoError(t, err)

	_, err = c.Query(context.Background(), "second call should be refused")
	assert.Error(t, err)
	assert.Equal(t, 1, p.calls, "second call must not reach the provider")
}

func TestQueryTruncatesLongPromptKeepingHead(t *testing.T) {
	var seen string
	p := &captureProvider{capture: &seen}
	c := NewClient(p, defaultRetry(), nil, WithMaxPromptChars(10))

	long := "0123456789ABCDEF"
	_, err := c.Query(context.Background(), long)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", seen)
	assert.Len(t, seen, 10)
}

type captureProvider struct{ capture *string }

func (c *captureProvider) Name() string { return "capture" }
func (c *captureProvider) Complete(ctx context.Context, prompt string) (string, Usage, error) {
	*c.capture = prompt
	return "done", Usage{}, nil
}
