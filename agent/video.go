package agent

import (
	"github.com/driveguide/enrichpipe/checkpoint"
	"github.com/driveguide/enrichpipe/core"
	"github.com/driveguide/enrichpipe/llm"
	"github.com/driveguide/enrichpipe/resilience"
)

// NewVideoPipeline builds the video-kind specialization: ranking rewards
// relevance, view count, recency, and a duration bonus.
func NewVideoPipeline(cfg core.AgentConfig, search SearchFunc, fetch FetchFunc, llmClient *llm.Client, breaker *resilience.CircuitBreaker, cp *checkpoint.Store, logger core.Logger, metrics core.MetricsSink) *Pipeline {
	return &Pipeline{
		Kind: core.AgentVideo, Config: cfg,
		Search: search, Fetch: fetch, Rank: RankVideo,
		LLM: llmClient, Breaker: breaker, Check: cp, Logger: logger, Metrics: metrics,
	}
}
