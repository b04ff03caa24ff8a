package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/driveguide/enrichpipe/core"
	"github.com/driveguide/enrichpipe/llm"
)

// LLMDecision is the parsed shape of an LLM judge response.
type LLMDecision struct {
	ChosenAgent      string
	IndividualScores map[core.AgentType]float64
	Rationale        string
}

// ScoreWithLLM renders a judge prompt, calls the LLM, and parses its
// response via a cascade of tolerant strategies: markdown fences,
// narrative prefixes, and alternate field names like
// final_selection.agent_type or scores.{agent}."Total Weighted Score".
func ScoreWithLLM(ctx context.Context, client *llm.Client, task core.Task, results map[core.AgentType]core.AgentResult) (LLMDecision, error) {
	prompt := renderJudgePrompt(task, results)
	raw, err := client.Query(ctx, prompt)
	if err != nil {
		return LLMDecision{}, err
	}
	return ParseLLMDecision(raw)
}

func renderJudgePrompt(task core.Task, results map[core.AgentType]core.AgentResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s (%s). Evaluate each agent's result and choose the best.\n", task.LocationName, task.RouteContext)
	for kind, r := range results {
		fmt.Fprintf(&b, "- %s: status=%s title=%v\n", kind, r.Status, r.Metadata["title"])
	}
	b.WriteString(`Respond as JSON: {"chosen_agent": "...", "individual_scores": {"video": 0, "song": 0, "knowledge": 0}, "rationale": "..."}`)
	return b.String()
}

// ParseLLMDecision tries, in order: the canonical shape; the
// final_selection/scores.*.Total Weighted Score alternate shape (observed
// from Gemini); and a narrative "**Agent Type**\nScore: N/100" fallback.
func ParseLLMDecision(raw string) (LLMDecision, error) {
	body := stripFence(raw)

	if d, ok := tryCanonical(body); ok {
		return d, nil
	}
	if d, ok := tryFinalSelection(body); ok {
		return d, nil
	}
	if d, ok := tryNarrative(body); ok {
		return d, nil
	}
	return LLMDecision{}, fmt.Errorf("judge: could not parse LLM decision from response")
}

type canonicalShape struct {
	ChosenAgent      string             `json:"chosen_agent"`
	IndividualScores map[string]float64 `json:"individual_scores"`
	Rationale        string             `json:"rationale"`
}

func tryCanonical(body string) (LLMDecision, bool) {
	var v canonicalShape
	if err := json.Unmarshal([]byte(body), &v); err != nil || len(v.IndividualScores) == 0 {
		return LLMDecision{}, false
	}
	return LLMDecision{
		ChosenAgent:      v.ChosenAgent,
		IndividualScores: toAgentScores(v.IndividualScores),
		Rationale:        v.Rationale,
	}, true
}

type finalSelectionShape struct {
	FinalSelection struct {
		AgentType string `json:"agent_type"`
	} `json:"final_selection"`
	Scores map[string]map[string]float64 `json:"scores"`
}

func tryFinalSelection(body string) (LLMDecision, bool) {
	var v finalSelectionShape
	if err := json.Unmarshal([]byte(body), &v); err != nil || len(v.Scores) == 0 {
		return LLMDecision{}, false
	}
	scores := make(map[string]float64, len(v.Scores))
	for kind, fields := range v.Scores {
		if total, ok := fields["Total Weighted Score"]; ok {
			scores[kind] = total
		}
	}
	if len(scores) == 0 {
		return LLMDecision{}, false
	}
	return LLMDecision{
		ChosenAgent:      v.FinalSelection.AgentType,
		IndividualScores: toAgentScores(scores),
	}, true
}

var narrativeScorePattern = regexp.MustCompile(`(?im)^\*\*(\w+)\*\*.*?\n(?:.*\n)?.*?Score:?\s*(\d+(?:\.\d+)?)\s*/?\s*100`)

func tryNarrative(body string) (LLMDecision, bool) {
	matches := narrativeScorePattern.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return LLMDecision{}, false
	}
	scores := make(map[string]float64, len(matches))
	for _, m := range matches {
		kind := strings.ToLower(m[1])
		val, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		scores[kind] = val
	}
	if len(scores) == 0 {
		return LLMDecision{}, false
	}
	best, bestScore := "", -1.0
	for k, v := range scores {
		if v > bestScore {
			best, bestScore = k, v
		}
	}
	return LLMDecision{ChosenAgent: best, IndividualScores: toAgentScores(scores)}, true
}

func toAgentScores(in map[string]float64) map[core.AgentType]float64 {
	out := make(map[core.AgentType]float64, len(in))
	for k, v := range in {
		out[core.AgentType(strings.ToLower(k))] = v
	}
	return out
}

var fencePattern = regexp.MustCompile(`(?s)` + "```" + `(?:json)?\s*(.*?)\s*` + "```")

func stripFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if m := fencePattern.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	if start := strings.IndexByte(raw, '{'); start >= 0 {
		if end := strings.LastIndexByte(raw, '}'); end > start {
			return raw[start : end+1]
		}
	}
	return raw
}
