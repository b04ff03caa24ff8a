package agent

import (
	"github.com/driveguide/enrichpipe/checkpoint"
	"github.com/driveguide/enrichpipe/core"
	"github.com/driveguide/enrichpipe/llm"
	"github.com/driveguide/enrichpipe/resilience"
)

// NewKnowledgePipeline builds the knowledge-kind specialization: ranking
// rewards host authority, relevance, and recency.
func NewKnowledgePipeline(cfg core.AgentConfig, search SearchFunc, fetch FetchFunc, llmClient *llm.Client, breaker *resilience.CircuitBreaker, cp *checkpoint.Store, logger core.Logger, metrics core.MetricsSink) *Pipeline {
	return &Pipeline{
		Kind: core.AgentKnowledge, Config: cfg,
		Search: search, Fetch: fetch, Rank: RankKnowledge,
		LLM: llmClient, Breaker: breaker, Check: cp, Logger: logger, Metrics: metrics,
	}
}
