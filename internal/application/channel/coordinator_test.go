package channel

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Coordinator Tests
// ---------------------------------------------------------------------------

func TestCoordinator_RunSlot(t *testing.T) {
	c := NewCoordinator()

	assert.False(t, c.IsRunning())
	require.True(t, c.TryAcquireRun())
	assert.True(t, c.IsRunning())
	assert.False(t, c.TryAcquireRun(), "second acquire must fail while held")

	c.ReleaseRun()
	assert.False(t, c.IsRunning())
	assert.True(t, c.TryAcquireRun())
	c.ReleaseRun()
}

func TestCoordinator_RunSlot_SingleWinnerUnderContention(t *testing.T) {
	c := NewCoordinator()
	var wins int32
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.TryAcquireRun() {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
}

func TestCoordinator_LockSKU_Serializes(t *testing.T) {
	c := NewCoordinator()
	var inCritical int32
	var maxSeen int32
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := c.LockSKU("SKU-1")
			defer release()

			n := atomic.AddInt32(&inCritical, 1)
			if n > atomic.LoadInt32(&maxSeen) {
				atomic.StoreInt32(&maxSeen, n)
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inCritical, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen, "critical section must never be shared")
}

func TestCoordinator_LockSKU_IndependentSKUs(t *testing.T) {
	c := NewCoordinator()

	releaseA := c.LockSKU("SKU-A")
	done := make(chan struct{})
	go func() {
		releaseB := c.LockSKU("SKU-B")
		releaseB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different SKU must not block")
	}
	releaseA()
}
