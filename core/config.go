package core

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SchedulerConfig controls the paced emitter (component F).
type SchedulerConfig struct {
	IntervalSeconds float64 `yaml:"interval"`
	Enabled         bool    `yaml:"enabled"`
}

// OrchestratorConfig controls the worker pool (component I).
type OrchestratorConfig struct {
	MaxWorkers      int     `yaml:"max_workers"`
	QueueTimeout    float64 `yaml:"queue_timeout"`
	ShutdownTimeout float64 `yaml:"shutdown_timeout"`
}

// AgentConfig controls one content-kind specialization (component G).
type AgentConfig struct {
	Name              string  `yaml:"name"`
	Enabled           bool    `yaml:"enabled"`
	SearchLimit       int     `yaml:"search_limit"`
	TimeoutSeconds    float64 `yaml:"timeout"`
	RetryAttempts     int     `yaml:"retry_attempts"`
	RetryBackoff      string  `yaml:"retry_backoff"` // "linear" | "exponential"
	MaxSearchCalls    int     `yaml:"max_search_calls"`
	MinDurationSecond int     `yaml:"min_duration_seconds"` // video only; 0 = unset
	MaxDurationSecond int     `yaml:"max_duration_seconds"` // video only; 0 = unset
	InferMood         bool    `yaml:"infer_mood"`           // song only; mood/genre query augmentation
}

// JudgeConfig controls scoring mode and weights (component H).
type JudgeConfig struct {
	ScoringMode  string  `yaml:"scoring_mode"` // "heuristic" | "llm" | "hybrid"
	UseLLM       bool    `yaml:"use_llm"`
	LLMProvider  string  `yaml:"llm_provider"`
	LLMTimeout   float64 `yaml:"llm_timeout"`
	LLMFallback  bool    `yaml:"llm_fallback"`
	WeightPresen float64 `yaml:"weight_presence"`
	WeightQualit float64 `yaml:"weight_quality"`
	WeightRelevn float64 `yaml:"weight_relevance"`
}

// RouteProviderConfig controls the route source (component E).
type RouteProviderConfig struct {
	Mode             string  `yaml:"mode"` // "live" | "cached"
	CacheDir         string  `yaml:"cache_dir"`
	RouteFile        string  `yaml:"route_file"`
	MaxSteps         int     `yaml:"max_steps"`
	APIRetryAttempts int     `yaml:"api_retry_attempts"`
	APITimeout       float64 `yaml:"api_timeout"`
}

// CircuitBreakerConfig controls every named breaker (component A).
type CircuitBreakerConfig struct {
	Enabled          bool    `yaml:"enabled"`
	FailureThreshold int     `yaml:"failure_threshold"`
	TimeoutSeconds   float64 `yaml:"timeout"`
}

// MetricsConfig controls the metrics sink (component B).
type MetricsConfig struct {
	Enabled        bool    `yaml:"enabled"`
	File           string  `yaml:"file"`
	UpdateInterval float64 `yaml:"update_interval"`
}

// OutputConfig controls emitters and checkpointing.
type OutputConfig struct {
	JSONFile             string `yaml:"json_file"`
	MarkdownFile         string `yaml:"markdown_file"`
	CSVFile              string `yaml:"csv_file"`
	CheckpointDir        string `yaml:"checkpoint_dir"`
	CheckpointsEnabled   bool   `yaml:"checkpoints_enabled"`
	CheckpointRetentionD int    `yaml:"checkpoint_retention_days"`
}

// LoggingConfig controls the ProductionLogger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // DEBUG|INFO|WARNING|ERROR
	Format string `yaml:"format"` // "json" | "text"
	Output string `yaml:"output"` // "stdout" | "stderr"
}

// Config is the full pipeline configuration: scheduler, orchestrator,
// agents.*, judge, route_provider, circuit_breaker, metrics, output.
type Config struct {
	Scheduler     SchedulerConfig
	Orchestrator  OrchestratorConfig
	Agents        map[AgentType]AgentConfig
	Judge         JudgeConfig
	RouteProvider RouteProviderConfig  `yaml:"route_provider"`
	CircuitBreak  CircuitBreakerConfig `yaml:"circuit_breaker"`
	Metrics       MetricsConfig
	Output        OutputConfig
	Logging       LoggingConfig

	// Warnings accumulates human-readable fallback notices produced by
	// Normalize(); invalid values fall back to documented defaults with a
	// warning rather than an error.
	Warnings []string
}

// DefaultConfig returns the hardcoded baseline configuration.
func DefaultConfig() *Config {
	return &Config{
		Scheduler: SchedulerConfig{IntervalSeconds: 2.0, Enabled: true},
		Orchestrator: OrchestratorConfig{
			MaxWorkers: 5, QueueTimeout: 1.0, ShutdownTimeout: 30.0,
		},
		Agents: map[AgentType]AgentConfig{
			AgentVideo: {
				Name: "VideoAgent", Enabled: true, SearchLimit: 3,
				TimeoutSeconds: 10.0, RetryAttempts: 3, RetryBackoff: "exponential",
			},
			AgentSong: {
				Name: "SongAgent", Enabled: true, SearchLimit: 3,
				TimeoutSeconds: 10.0, RetryAttempts: 3, RetryBackoff: "exponential",
			},
			AgentKnowledge: {
				Name: "KnowledgeAgent", Enabled: true, SearchLimit: 3,
				TimeoutSeconds: 10.0, RetryAttempts: 3, RetryBackoff: "exponential",
			},
		},
		Judge: JudgeConfig{
			ScoringMode: "heuristic", UseLLM: false, LLMProvider: "mock",
			LLMTimeout: 30.0, LLMFallback: true,
			WeightPresen: 0.3, WeightQualit: 0.3, WeightRelevn: 0.4,
		},
		RouteProvider: RouteProviderConfig{
			Mode: "cached", CacheDir: "data/routes", MaxSteps: 25,
			APIRetryAttempts: 3, APITimeout: 20.0,
		},
		CircuitBreak: CircuitBreakerConfig{Enabled: true, FailureThreshold: 5, TimeoutSeconds: 60.0},
		Metrics:      MetricsConfig{Enabled: true, File: "logs/metrics.json", UpdateInterval: 5.0},
		Output: OutputConfig{
			JSONFile: "output/final_route.json", MarkdownFile: "output/summary.md",
			CSVFile: "output/tour_export.csv", CheckpointDir: "output/checkpoints",
			CheckpointsEnabled: true, CheckpointRetentionD: 7,
		},
		Logging: LoggingConfig{Level: "INFO", Format: "text", Output: "stdout"},
	}
}

// LoadFromFile merges a YAML document over the receiver (deep-merge at the
// section level). A missing file is not an error: a warning is logged
// through logger and defaults stand.
func (c *Config) LoadFromFile(path string, logger Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("config file not found, using defaults", map[string]interface{}{"path": path})
			return nil
		}
		return NewPipelineError("Config.LoadFromFile", "config", err)
	}
	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return NewPipelineError("Config.LoadFromFile", "config", err)
	}
	mergeConfig(c, &overlay)
	return nil
}

func mergeConfig(base, overlay *Config) {
	if overlay.Scheduler != (SchedulerConfig{}) {
		base.Scheduler = overlay.Scheduler
	}
	if overlay.Orchestrator != (OrchestratorConfig{}) {
		base.Orchestrator = overlay.Orchestrator
	}
	for k, v := range overlay.Agents {
		base.Agents[k] = v
	}
	if overlay.Judge != (JudgeConfig{}) {
		base.Judge = overlay.Judge
	}
	if overlay.RouteProvider != (RouteProviderConfig{}) {
		base.RouteProvider = overlay.RouteProvider
	}
	if overlay.CircuitBreak != (CircuitBreakerConfig{}) {
		base.CircuitBreak = overlay.CircuitBreak
	}
	if overlay.Metrics != (MetricsConfig{}) {
		base.Metrics = overlay.Metrics
	}
	if overlay.Output != (OutputConfig{}) {
		base.Output = overlay.Output
	}
	if overlay.Logging != (LoggingConfig{}) {
		base.Logging = overlay.Logging
	}
}

// LoadFromEnv applies environment-variable overrides, manually per field
// rather than via reflection. Env vars take precedence over the YAML layer
// but below functional options.
func (c *Config) LoadFromEnv(logger Logger) {
	if v := os.Getenv("SCHEDULER_INTERVAL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Scheduler.IntervalSeconds = f
			logger.Debug("env override", map[string]interface{}{"key": "SCHEDULER_INTERVAL", "value": f})
		}
	}
	if v := os.Getenv("ORCHESTRATOR_MAX_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Orchestrator.MaxWorkers = n
			logger.Debug("env override", map[string]interface{}{"key": "ORCHESTRATOR_MAX_WORKERS", "value": n})
		}
	}
	if v := os.Getenv("ROUTE_PROVIDER_MODE"); v != "" {
		c.RouteProvider.Mode = strings.ToLower(v)
		logger.Debug("env override", map[string]interface{}{"key": "ROUTE_PROVIDER_MODE", "value": v})
	}
	if v := os.Getenv("JUDGE_SCORING_MODE"); v != "" {
		c.Judge.ScoringMode = strings.ToLower(v)
		logger.Debug("env override", map[string]interface{}{"key": "JUDGE_SCORING_MODE", "value": v})
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToUpper(v)
		logger.Debug("env override", map[string]interface{}{"key": "LOG_LEVEL", "value": v})
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = strings.ToLower(v)
		logger.Debug("env override", map[string]interface{}{"key": "LOG_FORMAT", "value": v})
	}
}

// Secrets looks up a process-wide secret by env var name. Missing secrets
// are never fatal: callers demote to mock/cached providers instead.
func Secrets(key string) string { return os.Getenv(key) }

// Option is a functional configuration option, the highest-priority layer.
type Option func(*Config)

func WithSchedulerInterval(seconds float64) Option {
	return func(c *Config) { c.Scheduler.IntervalSeconds = seconds }
}

func WithMaxWorkers(n int) Option {
	return func(c *Config) { c.Orchestrator.MaxWorkers = n }
}

func WithJudgeMode(mode string) Option {
	return func(c *Config) { c.Judge.ScoringMode = mode }
}

func WithRouteMode(mode string) Option {
	return func(c *Config) { c.RouteProvider.Mode = mode }
}

func WithCheckpointDir(dir string) Option {
	return func(c *Config) { c.Output.CheckpointDir = dir }
}

// Apply runs every option against the config in order.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Normalize enforces bounds/choices on every configurable field, resetting
// any out-of-range or mistyped value to its default and recording a
// warning rather than returning an error.
func (c *Config) Normalize(logger Logger) {
	def := DefaultConfig()

	clampFloat := func(name string, val *float64, min, max, fallback float64) {
		if *val < min || *val > max {
			c.Warnings = append(c.Warnings, fmt.Sprintf("invalid value for %s: %v (fallback to default %v)", name, *val, fallback))
			*val = fallback
		}
	}
	clampInt := func(name string, val *int, min, max, fallback int) {
		if *val < min || *val > max {
			c.Warnings = append(c.Warnings, fmt.Sprintf("invalid value for %s: %v (fallback to default %v)", name, *val, fallback))
			*val = fallback
		}
	}
	choiceStr := func(name string, val *string, choices []string, fallback string) {
		norm := strings.ToLower(*val)
		for _, ch := range choices {
			if norm == ch {
				*val = norm
				return
			}
		}
		c.Warnings = append(c.Warnings, fmt.Sprintf("invalid value for %s: %v (fallback to default %v)", name, *val, fallback))
		*val = fallback
	}

	clampFloat("scheduler.interval", &c.Scheduler.IntervalSeconds, 0.5, 10.0, def.Scheduler.IntervalSeconds)
	clampInt("orchestrator.max_workers", &c.Orchestrator.MaxWorkers, 1, 20, def.Orchestrator.MaxWorkers)
	clampFloat("orchestrator.queue_timeout", &c.Orchestrator.QueueTimeout, 0.1, 5.0, def.Orchestrator.QueueTimeout)
	clampFloat("orchestrator.shutdown_timeout", &c.Orchestrator.ShutdownTimeout, 5.0, 120.0, def.Orchestrator.ShutdownTimeout)

	for kind, ag := range c.Agents {
		defAg := def.Agents[kind]
		clampInt(string(kind)+".search_limit", &ag.SearchLimit, 1, 10, defAg.SearchLimit)
		clampFloat(string(kind)+".timeout", &ag.TimeoutSeconds, 5.0, 30.0, defAg.TimeoutSeconds)
		clampInt(string(kind)+".retry_attempts", &ag.RetryAttempts, 1, 5, defAg.RetryAttempts)
		choiceStr(string(kind)+".retry_backoff", &ag.RetryBackoff, []string{"exponential", "linear"}, defAg.RetryBackoff)
		c.Agents[kind] = ag
	}

	choiceStr("judge.scoring_mode", &c.Judge.ScoringMode, []string{"heuristic", "llm", "hybrid"}, def.Judge.ScoringMode)
	choiceStr("judge.llm_provider", &c.Judge.LLMProvider, []string{"ollama", "openai", "claude", "gemini", "mock", "auto"}, def.Judge.LLMProvider)
	clampFloat("judge.llm_timeout", &c.Judge.LLMTimeout, 10.0, 60.0, def.Judge.LLMTimeout)

	choiceStr("logging.level", &c.Logging.Level, []string{"debug", "info", "warning", "error"}, strings.ToLower(def.Logging.Level))
	c.Logging.Level = strings.ToUpper(c.Logging.Level)

	clampInt("output.checkpoint_retention_days", &c.Output.CheckpointRetentionD, 0, 30, def.Output.CheckpointRetentionD)

	choiceStr("route_provider.mode", &c.RouteProvider.Mode, []string{"live", "cached"}, def.RouteProvider.Mode)
	clampInt("route_provider.api_retry_attempts", &c.RouteProvider.APIRetryAttempts, 1, 5, def.RouteProvider.APIRetryAttempts)
	clampFloat("route_provider.api_timeout", &c.RouteProvider.APITimeout, 5.0, 30.0, def.RouteProvider.APITimeout)

	clampInt("circuit_breaker.failure_threshold", &c.CircuitBreak.FailureThreshold, 3, 10, def.CircuitBreak.FailureThreshold)
	clampFloat("circuit_breaker.timeout", &c.CircuitBreak.TimeoutSeconds, 30.0, 300.0, def.CircuitBreak.TimeoutSeconds)

	clampFloat("metrics.update_interval", &c.Metrics.UpdateInterval, 1.0, 30.0, def.Metrics.UpdateInterval)

	// Live mode requires a directions API key; demote to cached rather than fail.
	if c.RouteProvider.Mode == "live" && Secrets("GOOGLE_MAPS_API_KEY") == "" {
		c.Warnings = append(c.Warnings, "GOOGLE_MAPS_API_KEY missing: falling back to cached mode")
		c.RouteProvider.Mode = "cached"
	}

	if len(c.Warnings) > 0 {
		logger.Warn("config validation warnings", map[string]interface{}{"count": len(c.Warnings)})
		for _, w := range c.Warnings {
			logger.Warn(w, nil)
		}
	} else {
		logger.Info("config validation passed with no warnings", nil)
	}
}
