package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/driveguide/enrichpipe/core"
	"github.com/driveguide/enrichpipe/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() core.AgentConfig {
	return core.AgentConfig{
		Name: "TestAgent", Enabled: true, SearchLimit: 3,
		TimeoutSeconds: 1, RetryAttempts: 2, RetryBackoff: "linear",
	}
}

func testBreaker() *resilience.CircuitBreaker {
	return resilience.NewCircuitBreaker("test-upstream", 5, time.Minute, nil, nil)
}

func TestPipelineRunReturnsOkOnSuccessfulFetch(t *testing.T) {
	search := func(ctx context.Context, query string, task core.Task) ([]core.Candidate, error) {
		return []core.Candidate{{ID: "c1", Title: "MIT walking tour", URL: "http://x/1"}}, nil
	}
	fetch := func(ctx context.Context, c core.Candidate, task core.Task) (map[string]interface{}, error) {
		return map[string]interface{}{"title": c.Title, "url": c.URL, "reasoning": "great match"}, nil
	}

	p := NewVideoPipeline(testConfig(), search, fetch, nil, testBreaker(), nil, nil, nil)
	result := p.Run(context.Background(), core.Task{TransactionID: "t1", StepNumber: 1, LocationName: "MIT", RouteContext: "Boston"})

	assert.Equal(t, core.StatusOK, result.Status)
	assert.Equal(t, "MIT walking tour", result.Metadata["title"])
	assert.Equal(t, "great match", result.Reasoning)
}

func TestPipelineRunReturnsUnavailableWhenNoCandidates(t *testing.T) {
	search := func(ctx context.Context, query string, task core.Task) ([]core.Candidate, error) {
		return nil, nil
	}
	fetch := func(ctx context.Context, c core.Candidate, task core.Task) (map[string]interface{}, error) {
		t.Fatal("fetch should not be called with no candidates")
		return nil, nil
	}

	p := NewVideoPipeline(testConfig(), search, fetch, nil, testBreaker(), nil, nil, nil)
	result := p.Run(context.Background(), core.Task{TransactionID: "t1", StepNumber: 1, LocationName: "Nowhere"})

	assert.Equal(t, core.StatusUnavailable, result.Status)
}

func TestPipelineRunReturnsUnavailableWhenFetchFails(t *testing.T) {
	search := func(ctx context.Context, query string, task core.Task) ([]core.Candidate, error) {
		return []core.Candidate{{ID: "c1", Title: "X"}}, nil
	}
	fetch := func(ctx context.Context, c core.Candidate, task core.Task) (map[string]interface{}, error) {
		return nil, errors.New("fetch exhausted")
	}

	p := NewVideoPipeline(testConfig(), search, fetch, nil, testBreaker(), nil, nil, nil)
	result := p.Run(context.Background(), core.Task{TransactionID: "t1", StepNumber: 1, LocationName: "X"})

	assert.Equal(t, core.StatusUnavailable, result.Status)
	assert.Equal(t, "Failed to fetch candidate", result.Error)
}

func TestPipelineRunIsolatesPerQuerySearchFailures(t *testing.T) {
	calls := 0
	search := func(ctx context.Context, query string, task core.Task) ([]core.Candidate, error) {
		calls++
		if query == task.LocationName+", "+task.RouteContext {
			return nil, errors.New("upstream down for this query")
		}
		return []core.Candidate{{ID: "ok1", Title: "fallback result"}}, nil
	}
	fetch := func(ctx context.Context, c core.Candidate, task core.Task) (map[string]interface{}, error) {
		return map[string]interface{}{"title": c.Title, "url": c.URL}, nil
	}

	p := NewVideoPipeline(testConfig(), search, fetch, nil, testBreaker(), nil, nil, nil)
	result := p.Run(context.Background(), core.Task{TransactionID: "t1", StepNumber: 1, LocationName: "MIT", RouteContext: "Boston"})

	require.Greater(t, calls, 1, "other queries must still run after one fails")
	assert.Equal(t, core.StatusOK, result.Status)
}

func TestSongPipelineAppliesMoodAugmentationWhenEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.InferMood = true
	cfg.SearchLimit = 4

	var seenQueries []string
	search := func(ctx context.Context, query string, task core.Task) ([]core.Candidate, error) {
		seenQueries = append(seenQueries, query)
		return nil, nil
	}
	fetch := func(ctx context.Context, c core.Candidate, task core.Task) (map[string]interface{}, error) {
		return nil, nil
	}

	p := NewSongPipeline(cfg, search, fetch, nil, testBreaker(), nil, nil, nil)
	task := core.Task{TransactionID: "t1", StepNumber: 1, LocationName: "Riverside Park", RouteContext: "Boston", Instructions: "relax by the garden"}
	p.Run(context.Background(), task)

	assert.Contains(t, seenQueries, "chill acoustic")
}
