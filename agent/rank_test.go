package agent

import (
	"testing"

	"github.com/driveguide/enrichpipe/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankVideoIsPermissiveOnDurationOutOfBounds(t *testing.T) {
	candidates := []core.Candidate{
		{ID: "a", Title: "walking tour video", DurationSecond: 60},
		{ID: "b", Title: "another tour", DurationSecond: 3600},
	}
	cfg := RankConfig{MinDurationSeconds: 300, MaxDurationSeconds: 1800}

	ranked := RankVideo(candidates, []string{"walking tour"}, cfg)
	require.Len(t, ranked, 2)
	// Both are out of bounds (60 < 300, 3600 > 1800): both score -1 but
	// neither is removed from the ranked list.
	assert.Less(t, ranked[0].Score, 0.0)
	assert.Less(t, ranked[1].Score, 0.0)
}

func TestRankVideoOrdersByScoreDescending(t *testing.T) {
	candidates := []core.Candidate{
		{ID: "low", Title: "unrelated clip", ViewCount: 100},
		{ID: "high", Title: "MIT walking tour", ViewCount: 100},
	}
	ranked := RankVideo(candidates, []string{"MIT walking tour"}, RankConfig{})
	require.Len(t, ranked, 2)
	assert.Equal(t, "high", ranked[0].Candidate.ID)
}

func TestRankKnowledgeRewardsAuthorityHosts(t *testing.T) {
	candidates := []core.Candidate{
		{ID: "gov", Title: "history", URL: "https://nps.gov/history"},
		{ID: "blog", Title: "history", URL: "https://randomblog.com/history"},
	}
	ranked := RankKnowledge(candidates, []string{"history"}, RankConfig{})
	require.Len(t, ranked, 2)
	assert.Equal(t, "gov", ranked[0].Candidate.ID)
}

func TestRankSongRewardsPopularityAndRelevance(t *testing.T) {
	candidates := []core.Candidate{
		{ID: "popular", Title: "road trip song", Popularity: 90},
		{ID: "obscure", Title: "road trip song", Popularity: 10},
	}
	ranked := RankSong(candidates, []string{"road trip song"}, RankConfig{})
	require.Len(t, ranked, 2)
	assert.Equal(t, "popular", ranked[0].Candidate.ID)
}
