// Package scheduler implements the paced emitter: it pushes tasks into a
// bounded channel at a fixed cadence and guarantees a terminating sentinel
// even when stopped early (stamp emit_timestamp, put, sleep, always
// enqueue a trailing sentinel, then checkpoint the emitted list).
package scheduler

import (
	"context"
	"time"

	"github.com/driveguide/enrichpipe/checkpoint"
	"github.com/driveguide/enrichpipe/core"
)

// Sentinel is pushed onto the output channel exactly once, after the last
// task (or immediately, if stopped before any task is emitted).
var Sentinel = core.Task{StepNumber: -1}

// IsSentinel reports whether t is the scheduler's terminating marker.
func IsSentinel(t core.Task) bool { return t.StepNumber == -1 }

// Scheduler paces emission of a fixed task list into a bounded channel.
type Scheduler struct {
	interval   time.Duration
	checkpoint *checkpoint.Store
	logger     core.Logger
	metrics    core.MetricsSink
}

// New builds a Scheduler. checkpoint/logger/metrics may be nil.
func New(interval time.Duration, cp *checkpoint.Store, logger core.Logger, metrics core.MetricsSink) *Scheduler {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	return &Scheduler{interval: interval, checkpoint: cp, logger: logger, metrics: metrics}
}

// Run emits tasks in order into out at the configured cadence, stamping
// emit_timestamp on each, and always pushes Sentinel before returning —
// whether it drained the full list or ctx was cancelled partway through.
// The caller owns out's lifetime; Run never closes it, since the sentinel
// value is the drain signal, matching the bounded-channel contract
// consumers (the orchestrator) expect.
func (s *Scheduler) Run(ctx context.Context, tasks []core.Task, out chan<- core.Task) {
	emitted := make([]core.Task, 0, len(tasks))

emitLoop:
	for _, t := range tasks {
		select {
		case <-ctx.Done():
			s.logger.Warn("scheduler stopped early", map[string]interface{}{"emitted": len(emitted), "total": len(tasks)})
			break emitLoop
		default:
		}

		t.EmitTimestamp = core.UnixFloat()
		expected := core.UnixFloat()

		select {
		case out <- t:
		case <-ctx.Done():
			s.logger.Warn("scheduler stopped while blocked on put", map[string]interface{}{"step": t.StepNumber})
			break emitLoop
		}
		emitted = append(emitted, t)
		if s.metrics != nil {
			s.metrics.Inc("scheduler.tasks_emitted", 1)
			s.metrics.SetGauge("queue.depth", float64(len(out)))
		}

		actual := core.UnixFloat()
		delay := actual - expected
		s.logger.Debug("task emitted", map[string]interface{}{
			"step_number": t.StepNumber, "delay_seconds": delay,
		})

		select {
		case <-time.After(s.interval):
		case <-ctx.Done():
			s.logger.Warn("scheduler stopped during pacing sleep", map[string]interface{}{"emitted": len(emitted), "total": len(tasks)})
			break emitLoop
		}
	}

	// Even a cancelled context must not drop the sentinel: the
	// orchestrator's drain loop depends on it to terminate.
	out <- Sentinel

	s.writeCheckpoint(emitted)
}

func (s *Scheduler) writeCheckpoint(emitted []core.Task) {
	if s.checkpoint == nil || len(emitted) == 0 {
		return
	}
	tid := emitted[0].TransactionID
	payload := map[string]interface{}{
		"transaction_id": tid,
		"emitted_count":  len(emitted),
		"tasks":          emitted,
	}
	_ = s.checkpoint.Write(tid, checkpoint.SchedulerQueueFilename(), payload)
}
