package route

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/driveguide/enrichpipe/core"
	"github.com/driveguide/enrichpipe/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDirections struct {
	leg DirectionsLeg
	err error
}

func (s *stubDirections) GetDirections(ctx context.Context, origin, destination string) (DirectionsLeg, error) {
	return s.leg, s.err
}

type stubGeocode struct {
	calls int
	name  string
	addr  string
	err   error
}

func (s *stubGeocode) ReverseGeocode(ctx context.Context, lat, lng float64) (string, string, error) {
	s.calls++
	return s.name, s.addr, s.err
}

func testRetry() resilience.RetryConfig {
	return resilience.RetryConfig{MaxAttempts: 2, Backoff: resilience.BackoffLinear, Timeout: 50 * time.Millisecond}
}

func TestLiveGetRouteStripsHTMLAndResolvesLocations(t *testing.T) {
	dir := &stubDirections{leg: DirectionsLeg{Steps: []DirectionsStep{
		{HTMLInstructions: "Turn <b>left</b> onto&nbsp;Main St", EndLat: 42.1, EndLng: -71.1},
	}}}
	geo := &stubGeocode{name: "Main St Junction", addr: "123 Main St"}
	breaker := resilience.NewCircuitBreaker("directions", 5, time.Minute, nil, nil)

	l := NewLive(dir, geo, 25, testRetry(), breaker, nil, nil)
	result, err := l.GetRoute(context.Background(), "A", "B")
	require.NoError(t, err)
	require.Len(t, result.Tasks, 1)
	assert.Equal(t, "Turn left onto Main St", result.Tasks[0].Instructions)
	assert.Equal(t, "Main St Junction", result.Tasks[0].LocationName)
}

func TestLiveGetRouteMemoizesReverseGeocodeByRoundedCoordinates(t *testing.T) {
	dir := &stubDirections{leg: DirectionsLeg{Steps: []DirectionsStep{
		{EndLat: 42.123456789, EndLng: -71.123456789},
		{EndLat: 42.1234567, EndLng: -71.1234567},
	}}}
	geo := &stubGeocode{name: "Spot", addr: "Addr"}
	breaker := resilience.NewCircuitBreaker("directions", 5, time.Minute, nil, nil)

	l := NewLive(dir, geo, 25, testRetry(), breaker, nil, nil)
	_, err := l.GetRoute(context.Background(), "A", "B")
	require.NoError(t, err)
	assert.Equal(t, 1, geo.calls, "second step rounds to the same 6dp key and must reuse the cache")
}

func TestLiveGetRouteFailsFastWhenStepsExceedMaxSteps(t *testing.T) {
	steps := make([]DirectionsStep, 30)
	dir := &stubDirections{leg: DirectionsLeg{Steps: steps}}
	breaker := resilience.NewCircuitBreaker("directions", 5, time.Minute, nil, nil)

	l := NewLive(dir, &stubGeocode{}, 25, testRetry(), breaker, nil, nil)
	_, err := l.GetRoute(context.Background(), "A", "B")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrRouteTooLarge)
}

func TestLiveGetRouteFailsAfterRetriesExhausted(t *testing.T) {
	dir := &stubDirections{err: errors.New("upstream down")}
	breaker := resilience.NewCircuitBreaker("directions", 5, time.Minute, nil, nil)

	l := NewLive(dir, &stubGeocode{}, 25, testRetry(), breaker, nil, nil)
	_, err := l.GetRoute(context.Background(), "A", "B")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrRouteFetchFailed)
}
