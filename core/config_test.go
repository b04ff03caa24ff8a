package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigMatchesDocumentedDefaults(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, 2.0, c.Scheduler.IntervalSeconds)
	assert.Equal(t, 5, c.Orchestrator.MaxWorkers)
	assert.Equal(t, "cached", c.RouteProvider.Mode)
	assert.Equal(t, 5, c.CircuitBreak.FailureThreshold)
	assert.Equal(t, 60.0, c.CircuitBreak.TimeoutSeconds)
}

func TestNormalizeFallsBackOnOutOfRangeValue(t *testing.T) {
	c := DefaultConfig()
	c.Scheduler.IntervalSeconds = 999 // out of [0.5, 10.0]
	c.Orchestrator.MaxWorkers = -3    // out of [1, 20]

	c.Normalize(&NoOpLogger{})

	assert.Equal(t, 2.0, c.Scheduler.IntervalSeconds)
	assert.Equal(t, 5, c.Orchestrator.MaxWorkers)
	assert.NotEmpty(t, c.Warnings)
}

func TestNormalizeNormalizesCaseForChoiceFields(t *testing.T) {
	c := DefaultConfig()
	c.Judge.ScoringMode = "HYBRID"
	c.Normalize(&NoOpLogger{})
	assert.Equal(t, "hybrid", c.Judge.ScoringMode)
}

func TestNormalizeRejectsUnknownChoiceWithWarning(t *testing.T) {
	c := DefaultConfig()
	c.RouteProvider.Mode = "teleport"
	c.Normalize(&NoOpLogger{})
	assert.Equal(t, "cached", c.RouteProvider.Mode)
	assert.Contains(t, c.Warnings[len(c.Warnings)-1], "route_provider.mode")
}

func TestOptionsApplyInOrder(t *testing.T) {
	c := DefaultConfig()
	c.Apply(WithSchedulerInterval(1.5), WithMaxWorkers(8))
	assert.Equal(t, 1.5, c.Scheduler.IntervalSeconds)
	assert.Equal(t, 8, c.Orchestrator.MaxWorkers)
}
