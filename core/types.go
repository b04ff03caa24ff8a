// Package core holds the cross-cutting types, errors, logging, and
// configuration shared by every pipeline component.
package core

import "time"

// Task is one step of a planned route, the unit of work flowing through the
// pipeline. Immutable once handed to the scheduler's output channel.
type Task struct {
	TransactionID string     `json:"transaction_id"`
	StepNumber    int        `json:"step_number"`
	LocationName  string     `json:"location_name"`
	Address       string     `json:"address,omitempty"`
	Coordinates   *LatLng    `json:"coordinates,omitempty"`
	Instructions  string     `json:"instructions"`
	SearchHint    string     `json:"search_hint"`
	RouteContext  string     `json:"route_context"`
	Timestamp     float64    `json:"timestamp"`
	EmitTimestamp float64    `json:"emit_timestamp,omitempty"`
}

// LatLng is a coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Candidate is an item returned by an agent's search phase, before
// selection. Unique within an agent run by ID (falling back to URL).
type Candidate struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	Source         string  `json:"source,omitempty"`
	Snippet        string  `json:"snippet,omitempty"`
	ViewCount      int64   `json:"view_count,omitempty"`
	Popularity     float64 `json:"popularity,omitempty"`
	Authority      float64 `json:"authority,omitempty"`
	PublishedAt    string  `json:"published_at,omitempty"`
	DurationSecond int     `json:"duration_seconds,omitempty"`
}

// Key returns the dedup key for a candidate: id if present, else url.
func (c Candidate) Key() string {
	if c.ID != "" {
		return c.ID
	}
	return c.URL
}

// AgentType enumerates the content-kind specializations.
type AgentType string

const (
	AgentVideo     AgentType = "video"
	AgentSong      AgentType = "song"
	AgentKnowledge AgentType = "knowledge"
)

// AgentStatus enumerates AgentResult.Status.
type AgentStatus string

const (
	StatusOK          AgentStatus = "ok"
	StatusUnavailable AgentStatus = "unavailable"
	StatusError       AgentStatus = "error"
)

// AgentResult is the outcome of one agent's run against one task.
type AgentResult struct {
	AgentType AgentType              `json:"agent_type"`
	Status    AgentStatus            `json:"status"`
	Metadata  map[string]interface{} `json:"metadata"`
	Reasoning string                 `json:"reasoning"`
	Timestamp float64                `json:"timestamp"`
	Error     string                 `json:"error,omitempty"`
}

// JudgeDecision is the scored verdict across all agent results for one task.
type JudgeDecision struct {
	TransactionID      string                 `json:"transaction_id"`
	OverallScore       float64                `json:"overall_score"`
	ChosenAgent        *AgentType             `json:"chosen_agent"`
	IndividualScores   map[AgentType]float64  `json:"individual_scores"`
	Rationale          string                 `json:"rationale"`
	PerAgentRationales map[AgentType]string   `json:"per_agent_rationales"`
	ChosenContent      map[string]interface{} `json:"chosen_content"`
	Timestamp          float64                `json:"timestamp"`
}

// StepOutput is the fully assembled per-step record handed to the aggregator.
type StepOutput struct {
	TransactionID string                   `json:"transaction_id"`
	StepNumber    int                      `json:"step_number"`
	Location      string                   `json:"location"`
	Instructions  string                   `json:"instructions"`
	Agents        map[AgentType]AgentResult `json:"agents"`
	Judge         JudgeDecision            `json:"judge"`
	Timestamp     float64                  `json:"timestamp"`
	EmitTimestamp float64                  `json:"emit_timestamp"`
}

// RouteResult is what a Route Provider produces: the ordered task list plus
// route-level metadata.
type RouteResult struct {
	Tasks    []Task                 `json:"tasks"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Now is the pipeline's single time source, seamed for deterministic tests.
var Now = func() time.Time { return time.Now() }

// UnixFloat returns the current time as Unix seconds with a fractional
// part, the timestamp format used throughout checkpoint artifacts.
func UnixFloat() float64 {
	return float64(Now().UnixNano()) / 1e9
}
