// Package route implements the route provider: producing an ordered task
// list from an (origin, destination) pair, either by reading a cached JSON
// document or by calling a live directions upstream.
package route

import (
	"context"

	"github.com/driveguide/enrichpipe/core"
)

// Provider produces an ordered task list for a route.
type Provider interface {
	GetRoute(ctx context.Context, origin, destination string) (core.RouteResult, error)
}

// fillDefaults applies the shaping every variant performs before
// returning: search_hint and route_context are filled in when absent.
func fillDefaults(tasks []core.Task, destination string) []core.Task {
	for i := range tasks {
		t := &tasks[i]
		if t.RouteContext == "" {
			t.RouteContext = destination
		}
		if t.SearchHint == "" {
			t.SearchHint = t.LocationName + ", " + t.RouteContext
		}
		if t.StepNumber == 0 {
			t.StepNumber = i + 1
		}
	}
	return tasks
}
