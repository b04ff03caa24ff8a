package core

import "context"

// Logger is the minimal structured-logging contract every component takes
// as a dependency. Fields carry arbitrary structured context.
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Debug(msg string, fields map[string]interface{})

	InfoWithContext(ctx context.Context, msg string, fields map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, fields map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, fields map[string]interface{})
	DebugWithContext(ctx context.Context, msg string, fields map[string]interface{})
}

// ComponentAwareLogger is a Logger that can be scoped to a named component,
// so e.g. "agent/video" and "route_provider" entries can be told apart.
type ComponentAwareLogger interface {
	Logger
	WithComponent(component string) Logger
}

// NoOpLogger discards everything. Used in tests and as a safe default.
type NoOpLogger struct{}

func (NoOpLogger) Info(string, map[string]interface{})  {}
func (NoOpLogger) Error(string, map[string]interface{}) {}
func (NoOpLogger) Warn(string, map[string]interface{})  {}
func (NoOpLogger) Debug(string, map[string]interface{}) {}

func (NoOpLogger) InfoWithContext(context.Context, string, map[string]interface{})  {}
func (NoOpLogger) ErrorWithContext(context.Context, string, map[string]interface{}) {}
func (NoOpLogger) WarnWithContext(context.Context, string, map[string]interface{})  {}
func (NoOpLogger) DebugWithContext(context.Context, string, map[string]interface{}) {}

// MetricsSink is the explicit-dependency-injected metrics contract. A
// single instance is created at pipeline startup and threaded through the
// scheduler, orchestrator, agents, and judge.
type MetricsSink interface {
	Inc(name string, delta float64)
	RecordLatency(name string, ms float64)
	SetGauge(name string, value float64)
	Snapshot() MetricsSnapshot
	Flush() error
}

// MetricsSnapshot is a point-in-time view returned by MetricsSink.Snapshot.
type MetricsSnapshot struct {
	Counters   map[string]float64   `json:"counters"`
	Gauges     map[string]float64   `json:"gauges"`
	Latencies  map[string][]float64 `json:"latencies"`
	SnapshotAt float64              `json:"snapshot_at"`
}

// CheckpointStore is the durable per-transaction artifact writer. Writes
// are best-effort: failures are logged, never fatal.
type CheckpointStore interface {
	Write(transactionID, filename string, payload interface{}) error
	Prune(retentionDays int) error
}
