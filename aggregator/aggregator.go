// Package aggregator implements the result aggregator: collecting
// StepOutputs, sorting by step_number for external emitters, and writing
// the final checkpoint.
package aggregator

import (
	"sort"

	"github.com/driveguide/enrichpipe/checkpoint"
	"github.com/driveguide/enrichpipe/core"
)

// Aggregator sorts and finalizes a run's StepOutputs.
type Aggregator struct {
	Check  *checkpoint.Store
	Logger core.Logger
}

func New(cp *checkpoint.Store, logger core.Logger) *Aggregator {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	return &Aggregator{Check: cp, Logger: logger}
}

// Finalize sorts outputs by step_number and writes the
// 05_final_output.json checkpoint keyed by the first StepOutput's
// transaction_id. An empty slice produces an empty (not nil) result and no
// checkpoint write.
func (a *Aggregator) Finalize(outputs []core.StepOutput) []core.StepOutput {
	sorted := make([]core.StepOutput, len(outputs))
	copy(sorted, outputs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StepNumber < sorted[j].StepNumber })

	if len(sorted) == 0 {
		return sorted
	}

	if a.Check != nil {
		tid := sorted[0].TransactionID
		_ = a.Check.Write(tid, checkpoint.FinalOutputFilename(), map[string]interface{}{
			"transaction_id": tid,
			"step_count":     len(sorted),
			"steps":          sorted,
		})
	}
	a.Logger.Info("final output assembled", map[string]interface{}{"steps": len(sorted)})
	return sorted
}
