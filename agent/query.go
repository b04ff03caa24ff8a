package agent

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseQueries extracts a list of search-query strings from a raw LLM
// response via a cascade of typed attempts over the same input, rather
// than permissive untyped traversal. Each variant is tried in turn; the
// first that parses wins. Markdown code fences and narrative prefixes are
// stripped before every attempt.
func ParseQueries(raw string) ([]string, error) {
	body := stripCodeFence(raw)

	if qs, ok := tryQueriesObject(body); ok {
		return dedupeNonEmpty(qs), nil
	}
	if qs, ok := trySearchQueriesObject(body); ok {
		return dedupeNonEmpty(qs), nil
	}
	if qs, ok := tryArrayOfStrings(body); ok {
		return dedupeNonEmpty(qs), nil
	}
	if qs, ok := tryArrayOfObjects(body); ok {
		return dedupeNonEmpty(qs), nil
	}
	return nil, fmt.Errorf("agent: could not extract queries from LLM response")
}

type queriesObject struct {
	Queries []string `json:"queries"`
}

func tryQueriesObject(body string) ([]string, bool) {
	var v queriesObject
	if err := json.Unmarshal([]byte(body), &v); err != nil || len(v.Queries) == 0 {
		return nil, false
	}
	return v.Queries, true
}

type searchQueriesObject struct {
	SearchQueries []string `json:"search_queries"`
}

func trySearchQueriesObject(body string) ([]string, bool) {
	var v searchQueriesObject
	if err := json.Unmarshal([]byte(body), &v); err != nil || len(v.SearchQueries) == 0 {
		return nil, false
	}
	return v.SearchQueries, true
}

func tryArrayOfStrings(body string) ([]string, bool) {
	var v []string
	if err := json.Unmarshal([]byte(body), &v); err != nil || len(v) == 0 {
		return nil, false
	}
	return v, true
}

type queryObjectEntry struct {
	Query       string `json:"query"`
	Rationale   string `json:"rationale"`
	Reasoning   string `json:"reasoning"`
	Description string `json:"description"`
	Explanation string `json:"explanation"`
}

func tryArrayOfObjects(body string) ([]string, bool) {
	var entries []queryObjectEntry
	if err := json.Unmarshal([]byte(body), &entries); err != nil || len(entries) == 0 {
		return nil, false
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Query != "" {
			out = append(out, e.Query)
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

var codeFencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// stripCodeFence unwraps a ```json ... ``` or ``` ... ``` block, falling
// back to the span from the first { or [ to the last matching } or ]
// when no fence is present
// and the body carries narrative prose around the JSON payload.
func stripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if m := codeFencePattern.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	if start := strings.IndexAny(raw, "{["); start >= 0 {
		open := raw[start]
		close := byte('}')
		if open == '[' {
			close = ']'
		}
		if end := strings.LastIndexByte(raw, close); end > start {
			return raw[start : end+1]
		}
	}
	return raw
}

func dedupeNonEmpty(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// kindKeyword maps an agent kind to its heuristic query-generation keyword.
func kindKeyword(kind string) string {
	switch kind {
	case "video":
		return "walking tour"
	case "song":
		return "music"
	case "knowledge":
		return "history"
	default:
		return ""
	}
}

// HeuristicQueries builds the fallback query set: up to three variants
// combining the task's location/context with the kind keyword, deduplicated
// and guaranteed non-empty when location is non-empty.
func HeuristicQueries(kind, location, routeContext string) []string {
	keyword := kindKeyword(kind)
	candidates := []string{
		strings.TrimSpace(fmt.Sprintf("%s, %s", location, routeContext)),
		strings.TrimSpace(fmt.Sprintf("%s %s", location, keyword)),
		strings.TrimSpace(fmt.Sprintf("%s %s", routeContext, keyword)),
	}
	return dedupeNonEmpty(candidates)
}
