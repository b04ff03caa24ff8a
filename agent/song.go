package agent

import (
	"strings"

	"github.com/driveguide/enrichpipe/checkpoint"
	"github.com/driveguide/enrichpipe/core"
	"github.com/driveguide/enrichpipe/llm"
	"github.com/driveguide/enrichpipe/resilience"
)

// NewSongPipeline builds the song-kind specialization: ranking rewards
// relevance, recency, and popularity. When cfg.InferMood is set, the
// heuristic query fallback is augmented with a mood/genre phrase inferred
// from the task.
func NewSongPipeline(cfg core.AgentConfig, search SearchFunc, fetch FetchFunc, llmClient *llm.Client, breaker *resilience.CircuitBreaker, cp *checkpoint.Store, logger core.Logger, metrics core.MetricsSink) *Pipeline {
	p := &Pipeline{
		Kind: core.AgentSong, Config: cfg,
		Search: search, Fetch: fetch, Rank: RankSong,
		LLM: llmClient, Breaker: breaker, Check: cp, Logger: logger, Metrics: metrics,
	}
	if cfg.InferMood {
		p.QueryAugment = inferSongMood
	}
	return p
}

var moodBuckets = []struct {
	keywords []string
	phrase   string
}{
	{keywords: []string{"relax", "chill", "beach", "park", "garden"}, phrase: "chill acoustic"},
	{keywords: []string{"party", "nightlife", "club", "downtown"}, phrase: "dance electronic"},
	{keywords: []string{"historic", "museum", "culture", "monument"}, phrase: "classical instrumental"},
}

// inferSongMood matches task.Instructions/RouteContext keywords against
// three mood buckets, returning a single extra query phrase when a bucket
// matches, or nil when none do.
func inferSongMood(task core.Task) []string {
	haystack := strings.ToLower(task.Instructions + " " + task.RouteContext)
	for _, bucket := range moodBuckets {
		for _, kw := range bucket.keywords {
			if strings.Contains(haystack, kw) {
				return []string{bucket.phrase}
			}
		}
	}
	return nil
}
