// Package checkpoint implements the durable per-transaction artifact store
// (component C): idempotent JSON writes under
// {checkpoint_dir}/{transaction_id}/{stage_prefix}_{name}.json, plus
// age-based retention pruning.
package checkpoint

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/driveguide/enrichpipe/core"
)

// Store writes checkpoint artifacts to the local filesystem. Write
// failures are logged, never fatal.
type Store struct {
	baseDir string
	enabled bool
	logger  core.Logger
}

var _ core.CheckpointStore = (*Store)(nil)

// NewStore builds a Store rooted at baseDir. When enabled is false, Write is
// a no-op (matching checkpoints_enabled=false in config).
func NewStore(baseDir string, enabled bool, logger core.Logger) *Store {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	return &Store{baseDir: baseDir, enabled: enabled, logger: logger}
}

// Write serializes payload as indented JSON to
// {baseDir}/{transactionID}/{filename}. Idempotent: re-running with
// identical inputs overwrites the same path. Never returns an error to a
// caller that ignores it — failures are logged here and the error is
// returned only so tests can assert on it; production call sites treat it
// as best-effort.
func (s *Store) Write(transactionID, filename string, payload interface{}) error {
	if !s.enabled {
		return nil
	}
	if transactionID == "" {
		transactionID = "unknown_tid"
	}
	dir := filepath.Join(s.baseDir, transactionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Error("checkpoint mkdir failed", map[string]interface{}{"dir": dir, "error": err.Error()})
		return err
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		s.logger.Error("checkpoint marshal failed", map[string]interface{}{"filename": filename, "error": err.Error()})
		return err
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Error("checkpoint write failed", map[string]interface{}{"path": path, "error": err.Error()})
		return err
	}
	s.logger.Info("wrote checkpoint", map[string]interface{}{"path": path})
	return nil
}

// Prune removes per-transaction checkpoint directories older than
// retentionDays. retentionDays <= 0 disables pruning.
func (s *Store) Prune(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(s.baseDir, entry.Name())
			if err := os.RemoveAll(path); err != nil {
				s.logger.Warn("checkpoint prune failed", map[string]interface{}{"path": path, "error": err.Error()})
			}
		}
	}
	return nil
}

// Stage name helpers for the pipeline's numbered checkpoint prefixes.
func RouteFilename() string                        { return "00_route.json" }
func SchedulerQueueFilename() string                { return "01_scheduler_queue.json" }
func AgentSearchFilename(kind string, step int) string {
	return filenameFor("02_agent_search_" + kind + "_step", step)
}
func AgentFetchFilename(kind string, step int) string {
	return filenameFor("03_agent_fetch_" + kind + "_step", step)
}
func JudgeDecisionFilename(step int) string { return filenameFor("04_judge_decision_step", step) }
func FinalOutputFilename() string           { return "05_final_output.json" }

func filenameFor(prefix string, step int) string {
	return prefix + "_" + strconv.Itoa(step) + ".json"
}
