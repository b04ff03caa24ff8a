// Package orchestrator implements the worker pool: consumes the task
// channel, fans each task out to every enabled agent in parallel, invokes
// the judge, and assembles a StepOutput.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/driveguide/enrichpipe/checkpoint"
	"github.com/driveguide/enrichpipe/core"
	"github.com/driveguide/enrichpipe/scheduler"
)

// Agent is the minimal retrieval contract: Run(task) → AgentResult. Both
// agent.Pipeline and any test double satisfy it.
type Agent interface {
	Run(ctx context.Context, task core.Task) core.AgentResult
}

// Judge scores one task's collected agent results.
type Judge interface {
	Decide(ctx context.Context, task core.Task, results map[core.AgentType]core.AgentResult) core.JudgeDecision
}

// Orchestrator pulls tasks off a channel and drives them through the
// agent fan-out and judge stages with bounded worker parallelism.
type Orchestrator struct {
	MaxWorkers int
	Agents     map[core.AgentType]Agent
	Judge      Judge
	Check      *checkpoint.Store
	Logger     core.Logger
	Metrics    core.MetricsSink
}

// New builds an Orchestrator. logger/metrics/checkpoint may be nil.
func New(maxWorkers int, agents map[core.AgentType]Agent, j Judge, cp *checkpoint.Store, logger core.Logger, metrics core.MetricsSink) *Orchestrator {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	return &Orchestrator{MaxWorkers: maxWorkers, Agents: agents, Judge: j, Check: cp, Logger: logger, Metrics: metrics}
}

// Run drains in, processing tasks with up to MaxWorkers concurrent
// step-executors, until the scheduler's Sentinel is received, then waits
// for in-flight steps to finish before returning the collected outputs.
// Sentinel receipt does not itself stop in-flight workers — it only stops
// further dispatch; outstanding in-flight steps are drained first.
func (o *Orchestrator) Run(ctx context.Context, in <-chan core.Task) []core.StepOutput {
	var mu sync.Mutex
	var outputs []core.StepOutput

	sem := make(chan struct{}, o.MaxWorkers)
	var wg sync.WaitGroup

	for t := range in {
		if scheduler.IsSentinel(t) {
			break
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(task core.Task) {
			defer wg.Done()
			defer func() { <-sem }()

			out := o.runStep(ctx, task)
			mu.Lock()
			outputs = append(outputs, out)
			mu.Unlock()
		}(t)
	}

	wg.Wait()
	return outputs
}

func (o *Orchestrator) runStep(ctx context.Context, task core.Task) core.StepOutput {
	start := time.Now()
	if o.Metrics != nil {
		o.Metrics.Inc("orchestrator.task_start", 1)
	}

	results := o.fanOutAgents(ctx, task)
	decision := o.Judge.Decide(ctx, task, results)

	output := core.StepOutput{
		TransactionID: task.TransactionID,
		StepNumber:    task.StepNumber,
		Location:      task.LocationName,
		Instructions:  task.Instructions,
		Agents:        results,
		Judge:         decision,
		Timestamp:     core.UnixFloat(),
		EmitTimestamp: task.EmitTimestamp,
	}

	if o.Metrics != nil {
		o.Metrics.RecordLatency("orchestrator.step_latency_ms", float64(time.Since(start).Milliseconds()))
	}
	return output
}

// fanOutAgents spawns one goroutine per enabled agent and recovers from
// any panic into a status=error AgentResult, so one agent's defect never
// takes down the step or its siblings.
func (o *Orchestrator) fanOutAgents(ctx context.Context, task core.Task) map[core.AgentType]core.AgentResult {
	results := make(map[core.AgentType]core.AgentResult, len(o.Agents))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for kind, a := range o.Agents {
		wg.Add(1)
		go func(kind core.AgentType, a Agent) {
			defer wg.Done()
			result := o.runAgentSafely(ctx, kind, a, task)
			mu.Lock()
			results[kind] = result
			mu.Unlock()
		}(kind, a)
	}
	wg.Wait()
	return results
}

func (o *Orchestrator) runAgentSafely(ctx context.Context, kind core.AgentType, a Agent, task core.Task) (result core.AgentResult) {
	defer func() {
		if r := recover(); r != nil {
			result = core.AgentResult{
				AgentType: kind, Status: core.StatusError,
				Metadata: map[string]interface{}{}, Error: fmt.Sprintf("panic: %v", r),
				Timestamp: core.UnixFloat(),
			}
		}
	}()
	return a.Run(ctx, task)
}
