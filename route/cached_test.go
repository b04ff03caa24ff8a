package route

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRouteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCachedGetRouteFillsDefaultsWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "route.json")
	writeRouteFile(t, path, `{
		"transaction_id": "tid-abc",
		"steps": [
			{"step_number": 1, "location_name": "Boston Common"},
			{"step_number": 2, "location_name": "Back Bay", "search_hint": "custom hint"}
		]
	}`)

	c := NewCached(dir, path, nil, nil)
	result, err := c.GetRoute(context.Background(), "A", "Z")
	require.NoError(t, err)
	require.Len(t, result.Tasks, 2)

	assert.Equal(t, "Boston Common, Z", result.Tasks[0].SearchHint)
	assert.Equal(t, "Z", result.Tasks[0].RouteContext)
	assert.Equal(t, "custom hint", result.Tasks[1].SearchHint)
}

func TestCachedGetRouteFallsBackToSlugThenDefaultFile(t *testing.T) {
	dir := t.TempDir()
	writeRouteFile(t, filepath.Join(dir, "default.json"), `{"steps": [{"step_number": 1, "location_name": "X"}]}`)

	c := NewCached(dir, "", nil, nil)
	result, err := c.GetRoute(context.Background(), "origin", "dest")
	require.NoError(t, err)
	assert.Len(t, result.Tasks, 1)
}

func TestCachedGetRouteErrorsOnMissingFile(t *testing.T) {
	c := NewCached(t.TempDir(), "/nonexistent/path.json", nil, nil)
	_, err := c.GetRoute(context.Background(), "a", "b")
	assert.Error(t, err)
}
