package judge

import (
	"testing"

	"github.com/driveguide/enrichpipe/core"
	"github.com/stretchr/testify/assert"
)

func defaultWeights() Weights { return Weights{Presence: 0.3, Quality: 0.3, Relevance: 0.4} }

func TestHeuristicScoresSkipsNonOkResults(t *testing.T) {
	results := map[core.AgentType]core.AgentResult{
		core.AgentVideo: {Status: core.StatusOK, Metadata: map[string]interface{}{"title": "MIT Tour", "view_count": 500}},
		core.AgentSong:  {Status: core.StatusUnavailable, Metadata: map[string]interface{}{}},
	}
	scores := HeuristicScores("MIT tour", results, defaultWeights())

	assert.Contains(t, scores, core.AgentVideo)
	assert.NotContains(t, scores, core.AgentSong)
}

func TestHeuristicScoresRewardsMetadataCompletenessAndRelevance(t *testing.T) {
	results := map[core.AgentType]core.AgentResult{
		core.AgentVideo: {Status: core.StatusOK, Metadata: map[string]interface{}{
			"title": "MIT walking tour", "description": "a tour", "view_count": 1000,
		}},
	}
	scores := HeuristicScores("MIT walking tour", results, defaultWeights())
	assert.Greater(t, scores[core.AgentVideo], 60.0)
}

func TestHeuristicScoresWithRationaleCoversEveryAgent(t *testing.T) {
	results := map[core.AgentType]core.AgentResult{
		core.AgentVideo: {Status: core.StatusOK, Metadata: map[string]interface{}{"title": "MIT Tour", "view_count": 500}},
		core.AgentSong:  {Status: core.StatusUnavailable, Metadata: map[string]interface{}{}},
	}
	scores, rationales := HeuristicScoresWithRationale("MIT tour", results, defaultWeights())

	assert.Contains(t, scores, core.AgentVideo)
	assert.NotContains(t, scores, core.AgentSong)

	assert.Contains(t, rationales[core.AgentVideo], "Heuristic score breakdown")
	assert.Equal(t, "Content unavailable or agent failed.", rationales[core.AgentSong])
}

func TestTokenizeDropsStopWordsAndShortTokens(t *testing.T) {
	toks := tokenize("The a MIT Tour of the city")
	assert.Contains(t, toks, "mit")
	assert.Contains(t, toks, "tour")
	assert.NotContains(t, toks, "the")
	assert.NotContains(t, toks, "a")
}
