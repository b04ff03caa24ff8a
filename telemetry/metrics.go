// Package telemetry implements the process-wide metrics sink. A single
// instance is created at pipeline startup and explicitly injected into
// every component that needs it (scheduler, orchestrator, agents, judge,
// route provider) rather than reached for as global state.
package telemetry

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/driveguide/enrichpipe/core"
)

// Sink is a thread-safe counters/latencies/gauges collector with periodic
// JSON snapshot flushing, passed around as an explicit dependency rather
// than reached for as a process-wide singleton.
type Sink struct {
	mu        sync.Mutex
	counters  map[string]float64
	gauges    map[string]float64
	latencies map[string][]float64

	file   string
	logger core.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

var _ core.MetricsSink = (*Sink)(nil)

// NewSink builds a Sink that writes snapshots to file. Call Start with an
// update interval to begin the background flush loop, and Stop to join it with a
// guaranteed final flush.
func NewSink(file string, logger core.Logger) *Sink {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	return &Sink{
		counters:  make(map[string]float64),
		gauges:    make(map[string]float64),
		latencies: make(map[string][]float64),
		file:      file,
		logger:    logger,
		stopCh:    make(chan struct{}),
	}
}

func (s *Sink) Inc(name string, delta float64) {
	s.mu.Lock()
	s.counters[name] += delta
	s.mu.Unlock()
}

func (s *Sink) RecordLatency(name string, ms float64) {
	s.mu.Lock()
	s.latencies[name] = append(s.latencies[name], ms)
	s.mu.Unlock()
}

func (s *Sink) SetGauge(name string, value float64) {
	s.mu.Lock()
	s.gauges[name] = value
	s.mu.Unlock()
}

func (s *Sink) Snapshot() core.MetricsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	counters := make(map[string]float64, len(s.counters))
	for k, v := range s.counters {
		counters[k] = v
	}
	gauges := make(map[string]float64, len(s.gauges))
	for k, v := range s.gauges {
		gauges[k] = v
	}
	latencies := make(map[string][]float64, len(s.latencies))
	for k, v := range s.latencies {
		cp := make([]float64, len(v))
		copy(cp, v)
		latencies[k] = cp
	}
	return core.MetricsSnapshot{
		Counters: counters, Gauges: gauges, Latencies: latencies,
		SnapshotAt: core.UnixFloat(),
	}
}

// Flush serializes the current snapshot to file. A failure is logged and
// never returned as fatal to the caller's flow.
func (s *Sink) Flush() error {
	snap := s.Snapshot()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		s.logger.Error("metrics flush marshal failed", map[string]interface{}{"error": err.Error()})
		return err
	}
	if err := os.MkdirAll(dirOf(s.file), 0o755); err != nil {
		s.logger.Error("metrics flush mkdir failed", map[string]interface{}{"error": err.Error()})
		return err
	}
	if err := os.WriteFile(s.file, data, 0o644); err != nil {
		s.logger.Error("metrics flush write failed", map[string]interface{}{"error": err.Error()})
		return err
	}
	return nil
}

// Start launches the periodic background flush goroutine.
func (s *Sink) Start(updateInterval time.Duration) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(updateInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_ = s.Flush()
			case <-s.stopCh:
				return
			}
		}
	}()
}

// Stop halts the background flush goroutine and performs one final flush.
func (s *Sink) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
	_ = s.Flush()
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}
