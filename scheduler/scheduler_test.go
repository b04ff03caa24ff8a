package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/driveguide/enrichpipe/checkpoint"
	"github.com/driveguide/enrichpipe/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTasks(n int, tid string) []core.Task {
	tasks := make([]core.Task, n)
	for i := 0; i < n; i++ {
		tasks[i] = core.Task{TransactionID: tid, StepNumber: i + 1, LocationName: "loc"}
	}
	return tasks
}

func drain(ch chan core.Task) []core.Task {
	var out []core.Task
	for t := range ch {
		out = append(out, t)
		if IsSentinel(t) {
			break
		}
	}
	return out
}

func TestRunEmitsTasksInOrderThenSentinel(t *testing.T) {
	s := New(time.Millisecond, nil, nil, nil)
	out := make(chan core.Task, 10)

	s.Run(context.Background(), makeTasks(3, "tid1"), out)
	close(out)

	got := drain(out)
	require.Len(t, got, 4)
	assert.Equal(t, 1, got[0].StepNumber)
	assert.Equal(t, 2, got[1].StepNumber)
	assert.Equal(t, 3, got[2].StepNumber)
	assert.True(t, IsSentinel(got[3]))
	assert.NotZero(t, got[0].EmitTimestamp)
}

func TestRunStopsEarlyButAlwaysEmitsSentinel(t *testing.T) {
	s := New(20*time.Millisecond, nil, nil, nil)
	out := make(chan core.Task, 10)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(25 * time.Millisecond)
		cancel()
	}()

	s.Run(ctx, makeTasks(10, "tid2"), out)
	close(out)

	got := drain(out)
	require.NotEmpty(t, got)
	last := got[len(got)-1]
	assert.True(t, IsSentinel(last))
	assert.Less(t, len(got)-1, 10, "must not have emitted every task after early cancellation")
}

func TestRunWritesSchedulerQueueCheckpoint(t *testing.T) {
	dir := t.TempDir()
	cp := checkpoint.NewStore(dir, true, nil)
	s := New(time.Millisecond, cp, nil, nil)
	out := make(chan core.Task, 10)

	s.Run(context.Background(), makeTasks(2, "tid3"), out)
	close(out)
	drain(out)

	_, err := os.Stat(filepath.Join(dir, "tid3", checkpoint.SchedulerQueueFilename()))
	require.NoError(t, err)
}
