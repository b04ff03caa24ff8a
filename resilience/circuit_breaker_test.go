package resilience

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/driveguide/enrichpipe/core"
	"github.com/stretchr/testify/assert"
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker("upstream", 3, time.Minute, nil, nil)
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		err := cb.Call(func() error { return boom })
		assert.ErrorIs(t, err, boom)
	}

	assert.Equal(t, "open", cb.State())
	err := cb.Call(func() error { return nil })
	assert.ErrorIs(t, err, core.ErrBreakerOpen)
}

func TestCircuitBreakerHalfOpenSingleTrial(t *testing.T) {
	cb := NewCircuitBreaker("upstream", 1, 10*time.Millisecond, nil, nil)
	_ = cb.Call(func() error { return errors.New("boom") })
	assert.Equal(t, "open", cb.State())

	time.Sleep(15 * time.Millisecond)

	var admitted int32
	var wg sync.WaitGroup
	release := make(chan struct{})
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := cb.Call(func() error {
				atomic.AddInt32(&admitted, 1)
				<-release
				return nil
			})
			if err != nil {
				assert.ErrorIs(t, err, core.ErrBreakerOpen)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), admitted, "exactly one half-open trial should be admitted")
	assert.Equal(t, "closed", cb.State())
}

func TestCircuitBreakerSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker("upstream", 3, time.Minute, nil, nil)
	_ = cb.Call(func() error { return errors.New("e1") })
	_ = cb.Call(func() error { return nil })
	_ = cb.Call(func() error { return errors.New("e2") })
	_ = cb.Call(func() error { return errors.New("e3") })
	assert.Equal(t, "closed", cb.State())
}
