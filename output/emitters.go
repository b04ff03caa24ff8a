// Package output implements external renderings of a finalized run: JSON,
// Markdown, and CSV. Minimal reference implementations, kept simple since
// the only invariant they depend on is an ordered StepOutput slice.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/driveguide/enrichpipe/core"
)

// WriteJSON serializes outputs (already sorted by step_number) as a JSON
// array to path.
func WriteJSON(path string, outputs []core.StepOutput) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(outputs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// WriteMarkdown renders one section per step: location, instructions,
// chosen-agent label, chosen-content title+URL, overall score, and judge
// rationale.
func WriteMarkdown(path string, outputs []core.StepOutput) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("# Route Summary\n\n")
	for _, step := range outputs {
		fmt.Fprintf(&b, "## Step %d: %s\n\n", step.StepNumber, step.Location)
		fmt.Fprintf(&b, "%s\n\n", step.Instructions)

		if step.Judge.ChosenAgent != nil {
			title, _ := step.Judge.ChosenContent["title"].(string)
			url, _ := step.Judge.ChosenContent["url"].(string)
			fmt.Fprintf(&b, "**Chosen:** %s — [%s](%s)\n\n", *step.Judge.ChosenAgent, title, url)
		} else {
			b.WriteString("**Chosen:** none\n\n")
		}
		fmt.Fprintf(&b, "**Overall score:** %.1f\n\n", step.Judge.OverallScore)
		fmt.Fprintf(&b, "**Rationale:** %s\n\n", step.Judge.Rationale)
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

var csvHeader = []string{
	"location", "video_title", "video_url", "video_score",
	"song_title", "song_url", "song_score",
	"knowledge_title", "knowledge_url", "knowledge_score",
	"judge_overall_score", "judge_chosen_agent", "judge_chosen_content_title", "judge_chosen_content_url",
}

// WriteCSV renders the fixed-header export. Unknown/missing values are
// empty strings.
func WriteCSV(path string, outputs []core.StepOutput) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, step := range outputs {
		if err := w.Write(csvRow(step)); err != nil {
			return err
		}
	}
	return w.Error()
}

func csvRow(step core.StepOutput) []string {
	kindField := func(kind core.AgentType, field string) string {
		result, ok := step.Agents[kind]
		if !ok {
			return ""
		}
		v, ok := result.Metadata[field]
		if !ok {
			return ""
		}
		return fmt.Sprintf("%v", v)
	}
	scoreField := func(kind core.AgentType) string {
		s, ok := step.Judge.IndividualScores[kind]
		if !ok {
			return ""
		}
		return fmt.Sprintf("%.1f", s)
	}

	chosenAgent := ""
	if step.Judge.ChosenAgent != nil {
		chosenAgent = string(*step.Judge.ChosenAgent)
	}
	chosenTitle, _ := step.Judge.ChosenContent["title"].(string)
	chosenURL, _ := step.Judge.ChosenContent["url"].(string)

	overall := fmt.Sprintf("%.1f", step.Judge.OverallScore)

	return []string{
		step.Location,
		kindField(core.AgentVideo, "title"), kindField(core.AgentVideo, "url"), scoreField(core.AgentVideo),
		kindField(core.AgentSong, "title"), kindField(core.AgentSong, "url"), scoreField(core.AgentSong),
		kindField(core.AgentKnowledge, "title"), kindField(core.AgentKnowledge, "url"), scoreField(core.AgentKnowledge),
		overall, chosenAgent, chosenTitle, chosenURL,
	}
}
