package route

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/driveguide/enrichpipe/checkpoint"
	"github.com/driveguide/enrichpipe/core"
)

// cachedDoc is the loose on-disk shape a cached route file may take:
// fields are individually optional and defaulted during conversion.
type cachedDoc struct {
	TransactionID string          `json:"transaction_id"`
	Timestamp     float64         `json:"timestamp"`
	Steps         []cachedStep    `json:"steps"`
	Metadata      json.RawMessage `json:"metadata"`
}

type cachedStep struct {
	StepNumber   int          `json:"step_number"`
	LocationName string       `json:"location_name"`
	Address      string       `json:"address"`
	Coordinates  *core.LatLng `json:"coordinates"`
	Instructions string       `json:"instructions"`
	SearchHint   string       `json:"search_hint"`
	RouteContext string       `json:"route_context"`
}

// Cached reads a pre-computed route document from the filesystem rather
// than calling a live directions upstream.
type Cached struct {
	cacheDir   string
	routeFile  string
	checkpoint *checkpoint.Store
	logger     core.Logger
}

func NewCached(cacheDir, routeFile string, cp *checkpoint.Store, logger core.Logger) *Cached {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	return &Cached{cacheDir: cacheDir, routeFile: routeFile, checkpoint: cp, logger: logger}
}

func (c *Cached) GetRoute(ctx context.Context, origin, destination string) (core.RouteResult, error) {
	path := c.selectFile(origin, destination)

	data, err := os.ReadFile(path)
	if err != nil {
		return core.RouteResult{}, core.NewPipelineError("route.Cached.GetRoute", "route", err)
	}

	var doc cachedDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return core.RouteResult{}, core.NewPipelineError("route.Cached.GetRoute", "route", err)
	}

	tid := doc.TransactionID
	if tid == "" {
		tid = fmt.Sprintf("cached-%s", slug(origin, destination))
	}
	ts := doc.Timestamp
	if ts == 0 {
		ts = core.UnixFloat()
	}

	tasks := make([]core.Task, 0, len(doc.Steps))
	for _, s := range doc.Steps {
		tasks = append(tasks, core.Task{
			TransactionID: tid,
			StepNumber:    s.StepNumber,
			LocationName:  s.LocationName,
			Address:       s.Address,
			Coordinates:   s.Coordinates,
			Instructions:  s.Instructions,
			SearchHint:    s.SearchHint,
			RouteContext:  s.RouteContext,
			Timestamp:     ts,
		})
	}
	tasks = fillDefaults(tasks, destination)

	result := core.RouteResult{
		Tasks: tasks,
		Metadata: map[string]interface{}{
			"mode": "cached", "source_file": path, "origin": origin, "destination": destination,
		},
	}

	if c.checkpoint != nil {
		_ = c.checkpoint.Write(tid, checkpoint.RouteFilename(), result)
	}
	c.logger.Info("cached route loaded", map[string]interface{}{"steps": len(tasks), "file": path})
	return result, nil
}

// selectFile resolves the on-disk path to read, in order of preference:
// (1) an explicit route_file override; (2) a per-(origin,destination)
// slug file under cache_dir; (3) a bundled "default.json" sample.
func (c *Cached) selectFile(origin, destination string) string {
	if c.routeFile != "" {
		return c.routeFile
	}
	candidate := filepath.Join(c.cacheDir, slug(origin, destination)+".json")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return filepath.Join(c.cacheDir, "default.json")
}

func slug(origin, destination string) string {
	h := sha1.Sum([]byte(origin + "->" + destination))
	return hex.EncodeToString(h[:])[:16]
}
