package telemetry

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkCountersAreThreadSafeAndMonotonic(t *testing.T) {
	s := NewSink(filepath.Join(t.TempDir(), "metrics.json"), nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Inc("tasks_emitted", 1)
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	assert.Equal(t, float64(50), snap.Counters["tasks_emitted"])
}

func TestSinkFlushWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "metrics.json")
	s := NewSink(path, nil)
	s.Inc("x", 3)
	s.SetGauge("queue.depth", 2)
	s.RecordLatency("step", 12.5)

	require.NoError(t, s.Flush())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "queue.depth")
}

func TestSinkStartStopFinalFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.json")
	s := NewSink(path, nil)
	s.Start(10 * time.Millisecond)
	s.Inc("c", 1)
	s.Stop()

	_, err := os.Stat(path)
	assert.NoError(t, err)
}
