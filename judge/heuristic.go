// Package judge scores {agent_type → AgentResult} maps and selects a
// winner per step, combining rule-based scoring with optional
// language-model scoring across heuristic/LLM/hybrid modes.
package judge

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/driveguide/enrichpipe/core"
)

// stopWords is a small English stop-list used when tokenizing for
// relevance scoring.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "of": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "for": {}, "with": {}, "is": {}, "are": {}, "it": {}, "this": {},
	"that": {}, "by": {}, "from": {}, "as": {}, "be": {}, "was": {}, "were": {},
}

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// tokenize lowercases, extracts alphanumeric runs, drops single-character
// tokens and stop words.
func tokenize(s string) []string {
	tokens := tokenPattern.FindAllString(strings.ToLower(s), -1)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if len(tok) <= 1 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// presence is always 100 for any result eligible for scoring at all;
// eligibility itself is gated by the caller.
const presence = 100.0

// quality computes the kind-specific metadata-completeness sub-score.
func quality(kind core.AgentType, metadata map[string]interface{}) float64 {
	has := func(key string) bool {
		v, ok := metadata[key]
		if !ok || v == nil {
			return false
		}
		s, isStr := v.(string)
		return !isStr || s != ""
	}

	switch kind {
	case core.AgentVideo:
		var score float64
		if has("title") {
			score += 40
		}
		if has("description") {
			score += 40
		}
		if has("view_count") {
			score += 20
		}
		return score
	case core.AgentSong:
		var score float64
		if has("title") {
			score += 40
		}
		if has("artist") {
			score += 40
		}
		if has("album") {
			score += 20
		}
		return score
	case core.AgentKnowledge:
		var score float64
		if has("title") {
			score += 30
		}
		if has("summary") || has("content") {
			score += 50
		}
		if has("source") {
			score += 20
		}
		return score
	default:
		return 0
	}
}

// relevanceScore is 100 · |query_tokens ∩ content_tokens| / |query_tokens|.
func relevanceScore(queryTokens []string, metadata map[string]interface{}) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	content := contentText(metadata)
	contentSet := make(map[string]struct{})
	for _, t := range tokenize(content) {
		contentSet[t] = struct{}{}
	}

	seen := make(map[string]struct{})
	var matched float64
	for _, qt := range queryTokens {
		if _, ok := seen[qt]; ok {
			continue
		}
		seen[qt] = struct{}{}
		if _, ok := contentSet[qt]; ok {
			matched++
		}
	}
	return 100 * matched / float64(len(uniqueStrings(queryTokens)))
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func contentText(metadata map[string]interface{}) string {
	var parts []string
	for _, key := range []string{"title", "description", "summary", "content", "artist", "album"} {
		if v, ok := metadata[key]; ok {
			if s, isStr := v.(string); isStr {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, " ")
}

// Weights carries the heuristic score's blend coefficients.
type Weights struct {
	Presence  float64
	Quality   float64
	Relevance float64
}

// HeuristicScores computes per-agent-type heuristic scores for one task's
// result set. Results with status != ok, or empty metadata, are skipped
// (scored as absent, not zero) and have no key in the returned map;
// Judge.Decide then records them in individual_scores as 0.
func HeuristicScores(queryText string, results map[core.AgentType]core.AgentResult, weights Weights) map[core.AgentType]float64 {
	scores, _ := HeuristicScoresWithRationale(queryText, results, weights)
	return scores
}

// HeuristicScoresWithRationale computes the same per-agent scores as
// HeuristicScores, plus a per-agent rationale breakdown covering every
// agent type in results: "Heuristic score breakdown: Presence=P,
// Quality=Q, Relevance=R." for scored agents, "Content unavailable or
// agent failed." for agents skipped from scoring.
func HeuristicScoresWithRationale(queryText string, results map[core.AgentType]core.AgentResult, weights Weights) (map[core.AgentType]float64, map[core.AgentType]string) {
	queryTokens := tokenize(queryText)
	scores := make(map[core.AgentType]float64)
	rationales := make(map[core.AgentType]string, len(results))

	for kind, result := range results {
		if result.Status != core.StatusOK || len(result.Metadata) == 0 {
			rationales[kind] = "Content unavailable or agent failed."
			continue
		}
		q := quality(kind, result.Metadata)
		r := relevanceScore(queryTokens, result.Metadata)
		scores[kind] = weights.Presence*presence + weights.Quality*q + weights.Relevance*r
		rationales[kind] = fmt.Sprintf("Heuristic score breakdown: Presence=%.0f, Quality=%.0f, Relevance=%.0f.", presence, q, r)
	}
	return scores, rationales
}
