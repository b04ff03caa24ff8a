package judge

import (
	"context"

	"github.com/driveguide/enrichpipe/checkpoint"
	"github.com/driveguide/enrichpipe/core"
	"github.com/driveguide/enrichpipe/llm"
)

// Judge scores a task's agent results and selects a winner.
type Judge struct {
	ScoringMode string // "heuristic" | "llm" | "hybrid"
	Weights     Weights
	LLM         *llm.Client // nil when ScoringMode == "heuristic"
	Check       *checkpoint.Store
	Logger      core.Logger
	Metrics     core.MetricsSink
}

// New builds a Judge from a scoring mode, heuristic weights and its
// collaborators. llmClient may be nil when
// ScoringMode is "heuristic".
func New(scoringMode string, weights Weights, llmClient *llm.Client, cp *checkpoint.Store, logger core.Logger, metrics core.MetricsSink) *Judge {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	return &Judge{ScoringMode: scoringMode, Weights: weights, LLM: llmClient, Check: cp, Logger: logger, Metrics: metrics}
}

// Decide scores results and returns the JudgeDecision for task, writing the
// 04_judge_decision_step_<n>.json checkpoint.
func (j *Judge) Decide(ctx context.Context, task core.Task, results map[core.AgentType]core.AgentResult) core.JudgeDecision {
	queryText := task.LocationName + " " + task.RouteContext + " " + task.Instructions

	heuristicScores, rationales := HeuristicScoresWithRationale(queryText, results, j.Weights)

	var scores map[core.AgentType]float64
	switch j.ScoringMode {
	case "llm":
		scores = j.scoreLLMOnly(ctx, task, results, heuristicScores, rationales)
	case "hybrid":
		scores = j.scoreHybrid(ctx, task, results, heuristicScores, rationales)
	default:
		scores = heuristicScores
	}

	for kind := range results {
		if _, ok := scores[kind]; !ok {
			scores[kind] = 0
		}
	}

	chosen, best := argmax(scores)
	decision := core.JudgeDecision{
		TransactionID:      task.TransactionID,
		IndividualScores:   scores,
		PerAgentRationales: rationales,
		Timestamp:          core.UnixFloat(),
	}
	if best <= 0 {
		decision.ChosenAgent = nil
		decision.OverallScore = -1
		decision.ChosenContent = map[string]interface{}{}
		decision.Rationale = "No suitable content found."
	} else {
		decision.ChosenAgent = &chosen
		decision.OverallScore = best
		decision.ChosenContent = results[chosen].Metadata
		if r, ok := rationales[chosen]; ok {
			decision.Rationale = r
		} else {
			decision.Rationale = "No suitable content found."
		}
	}

	j.writeCheckpoint(task, decision)
	return decision
}

// scoreLLMOnly scores via the LLM and, on success, overwrites the
// per-agent rationale of every scored agent with the LLM's single
// rationale text (mirroring the LLM judge's rationale applying uniformly
// across agents, not per-agent).
func (j *Judge) scoreLLMOnly(ctx context.Context, task core.Task, results map[core.AgentType]core.AgentResult, heuristicScores map[core.AgentType]float64, rationales map[core.AgentType]string) map[core.AgentType]float64 {
	if j.LLM == nil {
		return heuristicScores
	}
	llmDecision, err := ScoreWithLLM(ctx, j.LLM, task, results)
	if err != nil {
		if j.Metrics != nil {
			j.Metrics.Inc("judge.llm_calls_failure", 1)
		}
		j.Logger.Warn("judge llm scoring failed, falling back to heuristic", map[string]interface{}{"error": err.Error()})
		return heuristicScores
	}
	applyLLMRationale(llmDecision.Rationale, llmDecision.IndividualScores, rationales)
	return llmDecision.IndividualScores
}

// scoreHybrid runs heuristic and LLM scoring, averaging per-agent scores.
// When a given agent is missing from the LLM's scores, the heuristic
// score is used unmodified rather than averaging against an implicit 0.
// On LLM success, every combined agent's rationale is overwritten with the
// LLM's single rationale text, same as scoreLLMOnly.
func (j *Judge) scoreHybrid(ctx context.Context, task core.Task, results map[core.AgentType]core.AgentResult, heuristic map[core.AgentType]float64, rationales map[core.AgentType]string) map[core.AgentType]float64 {
	if j.LLM == nil {
		return heuristic
	}

	llmDecision, err := ScoreWithLLM(ctx, j.LLM, task, results)
	if err != nil {
		if j.Metrics != nil {
			j.Metrics.Inc("judge.llm_calls_failure", 1)
		}
		j.Logger.Warn("judge llm scoring failed in hybrid mode, using heuristic only", map[string]interface{}{"error": err.Error()})
		return heuristic
	}

	combined := make(map[core.AgentType]float64, len(heuristic))
	for kind, hScore := range heuristic {
		if lScore, ok := llmDecision.IndividualScores[kind]; ok {
			combined[kind] = (hScore + lScore) / 2
		} else {
			combined[kind] = hScore
		}
	}
	for kind, lScore := range llmDecision.IndividualScores {
		if _, ok := combined[kind]; !ok {
			combined[kind] = lScore
		}
	}
	applyLLMRationale(llmDecision.Rationale, combined, rationales)
	return combined
}

// applyLLMRationale overwrites the rationale of every agent in scored
// with the LLM's single rationale text, if any — the LLM judge produces
// one rationale covering its whole decision, not a rationale per agent.
func applyLLMRationale(llmRationale string, scored map[core.AgentType]float64, rationales map[core.AgentType]string) {
	if llmRationale == "" {
		return
	}
	for kind := range scored {
		rationales[kind] = llmRationale
	}
}

func argmax(scores map[core.AgentType]float64) (core.AgentType, float64) {
	var best core.AgentType
	bestScore := 0.0
	first := true
	for kind, score := range scores {
		if first || score > bestScore {
			best, bestScore = kind, score
			first = false
		}
	}
	return best, bestScore
}

func (j *Judge) writeCheckpoint(task core.Task, decision core.JudgeDecision) {
	if j.Check == nil {
		return
	}
	_ = j.Check.Write(task.TransactionID, checkpoint.JudgeDecisionFilename(task.StepNumber), decision)
}
