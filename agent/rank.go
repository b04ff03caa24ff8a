package agent

import (
	"sort"
	"strings"

	"github.com/driveguide/enrichpipe/core"
)

// RankFunc scores a candidate set for one task and returns them sorted
// best-first. Stable: ties keep original (first-seen) order.
type RankFunc func(candidates []core.Candidate, queries []string, cfg RankConfig) []ScoredCandidate

// ScoredCandidate pairs a Candidate with its computed rank score.
type ScoredCandidate struct {
	Candidate core.Candidate
	Score     float64
}

// RankConfig carries the kind-specific bounds a rank function may consult.
type RankConfig struct {
	MinDurationSeconds int // 0 = unset
	MaxDurationSeconds int // 0 = unset
}

// relevance counts how many whole (lowercased) query strings appear as a
// substring of the candidate's lowercased title — each generated query
// counts as one unit, not its individual words.
func relevance(queries []string, title string) float64 {
	return relevanceIn(queries, title)
}

// relevanceInTitleOrURL counts how many whole (lowercased) query strings
// appear as a substring of either the candidate's lowercased title or URL.
func relevanceInTitleOrURL(queries []string, title, url string) float64 {
	return relevanceIn(queries, title, url)
}

func relevanceIn(queries []string, haystacks ...string) float64 {
	var count float64
	for _, q := range queries {
		term := strings.ToLower(q)
		for _, h := range haystacks {
			if strings.Contains(strings.ToLower(h), term) {
				count++
				break
			}
		}
	}
	return count
}

// recencyScore is a binary presence check: 1 if the candidate carries a
// non-empty published/released timestamp, 0 otherwise — no date math.
func recencyScore(publishedAt string) float64 {
	if publishedAt == "" {
		return 0
	}
	return 1
}

// RankVideo scores 10·relevance + views/1000 + recency + duration_bonus,
// with a permissive duration filter: out-of-bounds candidates score -1 but
// are never removed from the ranked list, so the top-ranked candidate may
// still be fetched.
func RankVideo(candidates []core.Candidate, queries []string, cfg RankConfig) []ScoredCandidate {
	scored := make([]ScoredCandidate, len(candidates))
	for i, c := range candidates {
		if durationOutOfBounds(c.DurationSecond, cfg) {
			scored[i] = ScoredCandidate{Candidate: c, Score: -1}
			continue
		}
		score := 10*relevance(queries, c.Title) + float64(c.ViewCount)/1000 + recencyScore(c.PublishedAt) + durationBonus(c.DurationSecond)
		scored[i] = ScoredCandidate{Candidate: c, Score: score}
	}
	return stableSortDesc(scored)
}

func durationOutOfBounds(seconds int, cfg RankConfig) bool {
	if seconds == 0 {
		return false
	}
	if cfg.MinDurationSeconds > 0 && seconds < cfg.MinDurationSeconds {
		return true
	}
	if cfg.MaxDurationSeconds > 0 && seconds > cfg.MaxDurationSeconds {
		return true
	}
	return false
}

func durationBonus(seconds int) float64 {
	if seconds <= 0 {
		return 0
	}
	switch {
	case seconds < 60:
		return 0
	case seconds <= 600:
		return 1
	default:
		return 0.5
	}
}

// RankSong scores 10·relevance + 2·recency + popularity/100.
func RankSong(candidates []core.Candidate, queries []string, cfg RankConfig) []ScoredCandidate {
	scored := make([]ScoredCandidate, len(candidates))
	for i, c := range candidates {
		score := 10*relevance(queries, c.Title) + 2*recencyScore(c.PublishedAt) + c.Popularity/100
		scored[i] = ScoredCandidate{Candidate: c, Score: score}
	}
	return stableSortDesc(scored)
}

// RankKnowledge scores 5·authority + 10·relevance + 2·recency, where
// authority is 3 for .gov/.edu/wikipedia.org hosts, 0 otherwise, and
// relevance is checked against both title and URL.
func RankKnowledge(candidates []core.Candidate, queries []string, cfg RankConfig) []ScoredCandidate {
	scored := make([]ScoredCandidate, len(candidates))
	for i, c := range candidates {
		score := 5*authority(c.URL) + 10*relevanceInTitleOrURL(queries, c.Title, c.URL) + 2*recencyScore(c.PublishedAt)
		scored[i] = ScoredCandidate{Candidate: c, Score: score}
	}
	return stableSortDesc(scored)
}

func authority(rawURL string) float64 {
	host := strings.ToLower(rawURL)
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	if strings.Contains(host, ".gov") || strings.Contains(host, ".edu") || strings.Contains(host, "wikipedia.org") {
		return 3
	}
	return 0
}

// stableSortDesc sorts by score descending, preserving input order among
// ties (sort.SliceStable).
func stableSortDesc(scored []ScoredCandidate) []ScoredCandidate {
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored
}
