package judge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLLMDecisionAcceptsCanonicalShape(t *testing.T) {
	raw := `{"chosen_agent": "video", "individual_scores": {"video": 80, "song": 40}, "rationale": "video wins"}`
	d, err := ParseLLMDecision(raw)
	require.NoError(t, err)
	assert.Equal(t, "video", d.ChosenAgent)
	assert.Equal(t, 80.0, d.IndividualScores["video"])
}

func TestParseLLMDecisionAcceptsFinalSelectionShape(t *testing.T) {
	raw := `{"final_selection": {"agent_type": "song"}, "scores": {"song": {"Total Weighted Score": 77}, "video": {"Total Weighted Score": 20}}}`
	d, err := ParseLLMDecision(raw)
	require.NoError(t, err)
	assert.Equal(t, "song", d.ChosenAgent)
	assert.Equal(t, 77.0, d.IndividualScores["song"])
}

func TestParseLLMDecisionAcceptsFencedCanonicalShape(t *testing.T) {
	raw := "Here is my decision:\n```json\n{\"chosen_agent\":\"knowledge\",\"individual_scores\":{\"knowledge\":90}}\n```"
	d, err := ParseLLMDecision(raw)
	require.NoError(t, err)
	assert.Equal(t, "knowledge", d.ChosenAgent)
}

func TestParseLLMDecisionFailsOnUnrecognizedShape(t *testing.T) {
	_, err := ParseLLMDecision("I cannot decide, sorry.")
	assert.Error(t, err)
}
