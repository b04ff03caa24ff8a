// Command enrichpipe wires the driving-route multimedia enrichment
// pipeline end to end: config → logger → metrics → checkpoint store →
// route provider → scheduler → LLM client → agents → judge →
// orchestrator → aggregator → emitters.
//
// CLI argument parsing is an external collaborator's job; this binary
// reads (origin, destination) from the first two positional arguments and
// everything else from the YAML file named by ENRICHPIPE_CONFIG (if set)
// and environment variables.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/driveguide/enrichpipe/agent"
	"github.com/driveguide/enrichpipe/aggregator"
	"github.com/driveguide/enrichpipe/checkpoint"
	"github.com/driveguide/enrichpipe/core"
	"github.com/driveguide/enrichpipe/judge"
	"github.com/driveguide/enrichpipe/llm"
	"github.com/driveguide/enrichpipe/orchestrator"
	"github.com/driveguide/enrichpipe/output"
	"github.com/driveguide/enrichpipe/resilience"
	"github.com/driveguide/enrichpipe/route"
	"github.com/driveguide/enrichpipe/scheduler"
	"github.com/driveguide/enrichpipe/telemetry"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: enrichpipe <origin> <destination>")
		os.Exit(1)
	}
	origin, destination := os.Args[1], os.Args[2]

	cfg := core.DefaultConfig()
	if path := os.Getenv("ENRICHPIPE_CONFIG"); path != "" {
		logger := core.NoOpLogger{}
		if err := cfg.LoadFromFile(path, logger); err != nil {
			fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.LoadFromEnv(core.NoOpLogger{})
	cfg.Normalize(core.NoOpLogger{})

	logger := core.NewProductionLogger("enrichpipe", cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.Level == "DEBUG")
	for _, w := range cfg.Warnings {
		logger.Warn("config warning", map[string]interface{}{"message": w})
	}

	metrics := telemetry.NewSink(cfg.Metrics.File, logger)
	cp := checkpoint.NewStore(cfg.Output.CheckpointDir, cfg.Output.CheckpointsEnabled, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	routeProvider := buildRouteProvider(cfg, cp, logger, metrics)
	routeResult, err := routeProvider.GetRoute(ctx, origin, destination)
	if err != nil {
		logger.Error("failed to obtain route", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	sched := scheduler.New(time.Duration(cfg.Scheduler.IntervalSeconds*float64(time.Second)), cp, logger, metrics)
	taskCh := make(chan core.Task, cfg.Orchestrator.MaxWorkers*2)
	go sched.Run(ctx, routeResult.Tasks, taskCh)

	agents := buildAgents(cfg, cp, logger, metrics)
	j := buildJudge(cfg, cp, logger, metrics)

	orch := orchestrator.New(cfg.Orchestrator.MaxWorkers, agents, j, cp, logger, metrics)
	outputs := orch.Run(ctx, taskCh)

	agg := aggregator.New(cp, logger)
	final := agg.Finalize(outputs)

	if err := writeOutputs(cfg, final); err != nil {
		logger.Error("failed to write outputs", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	if err := metrics.Flush(); err != nil {
		logger.Warn("metrics flush failed", map[string]interface{}{"error": err.Error()})
	}

	logger.Info("pipeline complete", map[string]interface{}{"steps": len(final)})
}

func buildRouteProvider(cfg *core.Config, cp *checkpoint.Store, logger core.Logger, metrics core.MetricsSink) route.Provider {
	if cfg.RouteProvider.Mode == "live" {
		httpClient := &http.Client{Timeout: time.Duration(cfg.RouteProvider.APITimeout * float64(time.Second))}
		breaker := resilience.NewCircuitBreaker("directions", cfg.CircuitBreak.FailureThreshold,
			time.Duration(cfg.CircuitBreak.TimeoutSeconds*float64(time.Second)), logger, metrics)
		retry := resilience.RetryConfig{
			MaxAttempts: cfg.RouteProvider.APIRetryAttempts, Backoff: resilience.BackoffExponential,
			Timeout: time.Duration(cfg.RouteProvider.APITimeout * float64(time.Second)),
		}
		return route.NewLive(newHTTPDirections(httpClient), newHTTPGeocode(httpClient), cfg.RouteProvider.MaxSteps, retry, breaker, cp, logger, route.WithMetrics(metrics))
	}
	return route.NewCached(cfg.RouteProvider.CacheDir, cfg.RouteProvider.RouteFile, cp, logger)
}

func buildAgents(cfg *core.Config, cp *checkpoint.Store, logger core.Logger, metrics core.MetricsSink) map[core.AgentType]orchestrator.Agent {
	httpClient := &http.Client{Timeout: 10 * time.Second}
	provider := llm.NewProvider(cfg.Judge.LLMProvider, httpClient)
	agents := map[core.AgentType]orchestrator.Agent{}

	for kind, acfg := range cfg.Agents {
		if !acfg.Enabled {
			continue
		}
		breaker := resilience.NewCircuitBreaker(string(kind), cfg.CircuitBreak.FailureThreshold,
			time.Duration(cfg.CircuitBreak.TimeoutSeconds*float64(time.Second)), logger, metrics)
		llmClient := llm.NewClient(provider, llm.RetryPolicy{
			MaxAttempts: acfg.RetryAttempts, Backoff: resilience.Backoff(acfg.RetryBackoff),
			Timeout: time.Duration(acfg.TimeoutSeconds * float64(time.Second)),
		}, logger, llm.WithMetrics(metrics))

		search, fetch := mockUpstream(kind)

		switch kind {
		case core.AgentVideo:
			agents[kind] = agent.NewVideoPipeline(acfg, search, fetch, llmClient, breaker, cp, logger, metrics)
		case core.AgentSong:
			agents[kind] = agent.NewSongPipeline(acfg, search, fetch, llmClient, breaker, cp, logger, metrics)
		case core.AgentKnowledge:
			agents[kind] = agent.NewKnowledgePipeline(acfg, search, fetch, llmClient, breaker, cp, logger, metrics)
		}
	}
	return agents
}

func buildJudge(cfg *core.Config, cp *checkpoint.Store, logger core.Logger, metrics core.MetricsSink) *judge.Judge {
	weights := judge.Weights{Presence: cfg.Judge.WeightPresen, Quality: cfg.Judge.WeightQualit, Relevance: cfg.Judge.WeightRelevn}
	var llmClient *llm.Client
	if cfg.Judge.UseLLM {
		httpClient := &http.Client{Timeout: time.Duration(cfg.Judge.LLMTimeout * float64(time.Second))}
		provider := llm.NewProvider(cfg.Judge.LLMProvider, httpClient)
		llmClient = llm.NewClient(provider, llm.RetryPolicy{
			MaxAttempts: 1, Backoff: resilience.BackoffLinear,
			Timeout: time.Duration(cfg.Judge.LLMTimeout * float64(time.Second)),
		}, logger, llm.WithMetrics(metrics))
	}
	return judge.New(cfg.Judge.ScoringMode, weights, llmClient, cp, logger, metrics)
}

func writeOutputs(cfg *core.Config, outputs []core.StepOutput) error {
	if cfg.Output.JSONFile != "" {
		if err := output.WriteJSON(cfg.Output.JSONFile, outputs); err != nil {
			return err
		}
	}
	if cfg.Output.MarkdownFile != "" {
		if err := output.WriteMarkdown(cfg.Output.MarkdownFile, outputs); err != nil {
			return err
		}
	}
	if cfg.Output.CSVFile != "" {
		if err := output.WriteCSV(cfg.Output.CSVFile, outputs); err != nil {
			return err
		}
	}
	return nil
}
