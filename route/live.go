package route

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/driveguide/enrichpipe/checkpoint"
	"github.com/driveguide/enrichpipe/core"
	"github.com/driveguide/enrichpipe/resilience"
)

// DirectionsLeg is what a DirectionsClient returns for one origin→destination
// request: an ordered list of raw steps. Only the fields the framework
// treats opaquely appear here — the concrete upstream (Google Maps or any
// other directions provider) is an external collaborator; only its
// interface is part of the core contract.
type DirectionsLeg struct {
	Steps []DirectionsStep
}

type DirectionsStep struct {
	HTMLInstructions string
	EndLat, EndLng   float64
}

// DirectionsClient is the upstream contract the Live provider consumes.
type DirectionsClient interface {
	GetDirections(ctx context.Context, origin, destination string) (DirectionsLeg, error)
}

// GeocodeClient reverse-geocodes a coordinate into a human-readable
// location name and formatted address.
type GeocodeClient interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (locationName, address string, err error)
}

// Live calls an external directions service, then reverse-geocodes each
// step's end coordinate.
type Live struct {
	directions DirectionsClient
	geocode    GeocodeClient
	checkpoint *checkpoint.Store
	logger     core.Logger
	metrics    core.MetricsSink
	breaker    *resilience.CircuitBreaker

	retry    resilience.RetryConfig
	maxSteps int

	mu       sync.Mutex
	geoCache map[string][2]string // "lat,lng" (6dp) -> [name, address]
}

// LiveOption configures optional Live behavior.
type LiveOption func(*Live)

func WithMetrics(sink core.MetricsSink) LiveOption { return func(l *Live) { l.metrics = sink } }

func NewLive(directions DirectionsClient, geocode GeocodeClient, maxSteps int, retry resilience.RetryConfig, breaker *resilience.CircuitBreaker, cp *checkpoint.Store, logger core.Logger, opts ...LiveOption) *Live {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	l := &Live{
		directions: directions, geocode: geocode, checkpoint: cp, logger: logger,
		breaker: breaker, retry: retry, maxSteps: maxSteps, geoCache: make(map[string][2]string),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Live) GetRoute(ctx context.Context, origin, destination string) (core.RouteResult, error) {
	var leg DirectionsLeg
	err := resilience.RetryWithBreaker(ctx, l.retry, l.breaker, func(callCtx context.Context) error {
		got, err := l.directions.GetDirections(callCtx, origin, destination)
		if err != nil {
			return err
		}
		leg = got
		return nil
	})
	if err != nil {
		return core.RouteResult{}, core.NewPipelineError("route.Live.GetRoute", "route", fmt.Errorf("%w: %v", core.ErrRouteFetchFailed, err))
	}

	if l.maxSteps > 0 && len(leg.Steps) > l.maxSteps {
		remedy := fmt.Sprintf("route has %d steps, exceeding max_steps=%d; split the journey into shorter legs or raise route_provider.max_steps", len(leg.Steps), l.maxSteps)
		return core.RouteResult{}, core.NewPipelineError("route.Live.GetRoute", "route", fmt.Errorf("%w: %s", core.ErrRouteTooLarge, remedy))
	}

	tid := fmt.Sprintf("%d_%s", core.Now().Unix(), uuid.NewString()[:8])
	ts := core.UnixFloat()
	tasks := make([]core.Task, 0, len(leg.Steps))

	for i, step := range leg.Steps {
		name, addr := l.resolveLocation(ctx, step.EndLat, step.EndLng)
		tasks = append(tasks, core.Task{
			TransactionID: tid,
			StepNumber:    i + 1,
			LocationName:  name,
			Address:       addr,
			Coordinates:   &core.LatLng{Lat: step.EndLat, Lng: step.EndLng},
			Instructions:  stripHTML(step.HTMLInstructions),
			RouteContext:  destination,
			Timestamp:     ts,
		})
	}
	tasks = fillDefaults(tasks, destination)

	result := core.RouteResult{
		Tasks: tasks,
		Metadata: map[string]interface{}{"mode": "live", "origin": origin, "destination": destination},
	}
	if l.checkpoint != nil {
		_ = l.checkpoint.Write(tid, checkpoint.RouteFilename(), result)
	}
	l.logger.Info("live route resolved", map[string]interface{}{"steps": len(tasks), "transaction_id": tid})
	return result, nil
}

// resolveLocation reverse-geocodes (lat, lng), memoizing by coordinates
// rounded to 6 decimal places so repeated step endpoints at the same
// junction don't re-hit the upstream. A geocode failure falls back to a
// coordinate-derived name rather than failing the whole route.
func (l *Live) resolveLocation(ctx context.Context, lat, lng float64) (string, string) {
	key := fmt.Sprintf("%.6f,%.6f", lat, lng)

	l.mu.Lock()
	if cached, ok := l.geoCache[key]; ok {
		l.mu.Unlock()
		return cached[0], cached[1]
	}
	l.mu.Unlock()

	var name, addr string
	err := resilience.RetryWithBreaker(ctx, l.retry, l.breaker, func(callCtx context.Context) error {
		n, a, err := l.geocode.ReverseGeocode(callCtx, lat, lng)
		if err != nil {
			return err
		}
		name, addr = n, a
		return nil
	})
	if err != nil {
		name = fmt.Sprintf("Location (%.4f, %.4f)", lat, lng)
		addr = ""
		l.logger.Warn("reverse geocode failed, using coordinate fallback", map[string]interface{}{"lat": lat, "lng": lng})
	}

	l.mu.Lock()
	l.geoCache[key] = [2]string{name, addr}
	l.mu.Unlock()
	return name, addr
}

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// stripHTML converts directions' HTML-formatted instructions to plain
// text: tags removed, non-breaking spaces collapsed, whitespace trimmed.
func stripHTML(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}
