// Package agent implements the generic retrieval pipeline: query
// generation → search → dedupe/rank → fetch, specialized per content kind
// by injected functions rather than subclassing — kinds are variants, not
// a subclass tree.
package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/driveguide/enrichpipe/checkpoint"
	"github.com/driveguide/enrichpipe/core"
	"github.com/driveguide/enrichpipe/llm"
	"github.com/driveguide/enrichpipe/resilience"
)

// SearchFunc is the upstream search contract consumed per kind, e.g.
// search_video(query, limit, ...) → Candidate[].
type SearchFunc func(ctx context.Context, query string, task core.Task) ([]core.Candidate, error)

// FetchFunc is the upstream fetch contract consumed per kind, e.g.
// fetch_video(id) → object.
type FetchFunc func(ctx context.Context, candidate core.Candidate, task core.Task) (map[string]interface{}, error)

// Pipeline is the reusable, kind-parameterized retrieval pipeline: a
// single value that takes kind-specific search/fetch/rank as parameters
// rather than a hierarchy of per-kind agent subclasses.
type Pipeline struct {
	Kind   core.AgentType
	Config core.AgentConfig

	Search SearchFunc
	Fetch  FetchFunc
	Rank   RankFunc

	// QueryAugment optionally appends extra heuristic query variants after
	// the standard three (e.g. the song agent's mood/genre augmentation),
	// applied only on the heuristic path.
	QueryAugment func(task core.Task) []string

	LLM     *llm.Client // nil disables LLM-assisted query generation
	Breaker *resilience.CircuitBreaker
	Check   *checkpoint.Store
	Logger  core.Logger
	Metrics core.MetricsSink
}

func (p *Pipeline) retryConfig() resilience.RetryConfig {
	backoff := resilience.BackoffExponential
	if p.Config.RetryBackoff == "linear" {
		backoff = resilience.BackoffLinear
	}
	return resilience.RetryConfig{
		MaxAttempts: p.Config.RetryAttempts,
		Backoff:     backoff,
		Timeout:     time.Duration(p.Config.TimeoutSeconds * float64(time.Second)),
	}
}

// Run executes the full search→rank→fetch pipeline for one task.
func (p *Pipeline) Run(ctx context.Context, task core.Task) core.AgentResult {
	logger := p.Logger
	if logger == nil {
		logger = core.NoOpLogger{}
	}

	queries := p.generateQueries(ctx, task)

	candidates, err := p.searchAll(ctx, queries, task)
	if err != nil {
		return core.AgentResult{
			AgentType: p.Kind, Status: core.StatusUnavailable,
			Metadata: map[string]interface{}{}, Reasoning: err.Error(), Timestamp: core.UnixFloat(),
			Error: err.Error(),
		}
	}
	if len(candidates) == 0 {
		return core.AgentResult{
			AgentType: p.Kind, Status: core.StatusUnavailable,
			Metadata: map[string]interface{}{}, Reasoning: core.ErrNoCandidates.Error(),
			Timestamp: core.UnixFloat(), Error: core.ErrNoCandidates.Error(),
		}
	}

	p.writeSearchCheckpoint(task, candidates)

	ranked := p.Rank(candidates, queries, RankConfig{
		MinDurationSeconds: p.Config.MinDurationSecond,
		MaxDurationSeconds: p.Config.MaxDurationSecond,
	})
	top := ranked[0].Candidate

	payload, err := p.fetchWithResilience(ctx, top, task)
	if err != nil || payload == nil {
		return core.AgentResult{
			AgentType: p.Kind, Status: core.StatusUnavailable,
			Metadata: map[string]interface{}{}, Reasoning: "Failed to fetch candidate",
			Timestamp: core.UnixFloat(), Error: "Failed to fetch candidate",
		}
	}

	p.writeFetchCheckpoint(task, payload)

	metadata := mergeWithFallback(payload, top)
	reasoning, _ := payload["reasoning"].(string)
	if reasoning == "" {
		reasoning = fmt.Sprintf("Selected %q for %s based on %s ranking.", top.Title, task.LocationName, p.Kind)
	}

	return core.AgentResult{
		AgentType: p.Kind, Status: core.StatusOK, Metadata: metadata,
		Reasoning: reasoning, Timestamp: core.UnixFloat(),
	}
}

// generateQueries tries the LLM path first (when configured), falling back
// to the heuristic generator on any failure.
func (p *Pipeline) generateQueries(ctx context.Context, task core.Task) []string {
	if p.LLM != nil {
		prompt := renderQueryPrompt(p.Kind, task)
		raw, err := p.LLM.Query(ctx, prompt)
		if err == nil {
			if queries, parseErr := ParseQueries(raw); parseErr == nil && len(queries) > 0 {
				return truncateQueries(queries, p.Config.SearchLimit)
			}
		}
		if p.Metrics != nil {
			p.Metrics.Inc("llm_fallback.query_generation", 1)
		}
	}
	return p.heuristicQueries(task)
}

func (p *Pipeline) heuristicQueries(task core.Task) []string {
	base := HeuristicQueries(string(p.Kind), task.LocationName, task.RouteContext)
	if p.QueryAugment != nil {
		base = dedupeNonEmpty(append(base, p.QueryAugment(task)...))
	}
	return truncateQueries(base, p.Config.SearchLimit)
}

func truncateQueries(queries []string, limit int) []string {
	if limit > 0 && len(queries) > limit {
		return queries[:limit]
	}
	return queries
}

func renderQueryPrompt(kind core.AgentType, task core.Task) string {
	return fmt.Sprintf(
		"Generate search queries for a %s about the location %q in the context of a trip to %q. Respond as JSON: {\"queries\": [\"...\"]}.",
		kind, task.LocationName, task.RouteContext,
	)
}

// searchAll runs each query under retry/breaker/timeout, merging
// candidates into a deduplicated collection keyed by id??url, preserving
// first-seen order. A search failure on one query is isolated — others
// still run.
func (p *Pipeline) searchAll(ctx context.Context, queries []string, task core.Task) ([]core.Candidate, error) {
	maxCalls := p.Config.MaxSearchCalls
	if maxCalls <= 0 || maxCalls > len(queries) {
		maxCalls = len(queries)
	}

	seen := make(map[string]struct{})
	merged := make([]core.Candidate, 0)

	for _, q := range queries[:maxCalls] {
		var found []core.Candidate
		err := resilience.RetryWithBreaker(ctx, p.retryConfig(), p.Breaker, func(callCtx context.Context) error {
			cs, err := p.Search(callCtx, q, task)
			if err != nil {
				return err
			}
			found = cs
			return nil
		})
		if err != nil {
			continue // isolated: exhausted retries on this query, move on
		}
		for _, c := range found {
			key := c.Key()
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, c)
		}
	}
	return merged, nil
}

func (p *Pipeline) fetchWithResilience(ctx context.Context, candidate core.Candidate, task core.Task) (map[string]interface{}, error) {
	var payload map[string]interface{}
	err := resilience.RetryWithBreaker(ctx, p.retryConfig(), p.Breaker, func(callCtx context.Context) error {
		result, err := p.Fetch(callCtx, candidate, task)
		if err != nil {
			return err
		}
		payload = result
		return nil
	})
	return payload, err
}

func mergeWithFallback(payload map[string]interface{}, top core.Candidate) map[string]interface{} {
	out := make(map[string]interface{}, len(payload)+2)
	for k, v := range payload {
		out[k] = v
	}
	if _, ok := out["title"]; !ok {
		out["title"] = top.Title
	}
	if _, ok := out["url"]; !ok {
		out["url"] = top.URL
	}
	return out
}

func (p *Pipeline) writeSearchCheckpoint(task core.Task, candidates []core.Candidate) {
	if p.Check == nil {
		return
	}
	name := checkpoint.AgentSearchFilename(string(p.Kind), task.StepNumber)
	_ = p.Check.Write(task.TransactionID, name, map[string]interface{}{
		"step_number": task.StepNumber, "kind": p.Kind, "candidates": candidates,
	})
}

func (p *Pipeline) writeFetchCheckpoint(task core.Task, payload map[string]interface{}) {
	if p.Check == nil {
		return
	}
	name := checkpoint.AgentFetchFilename(string(p.Kind), task.StepNumber)
	_ = p.Check.Write(task.TransactionID, name, map[string]interface{}{
		"step_number": task.StepNumber, "kind": p.Kind, "selected": payload,
	})
}
