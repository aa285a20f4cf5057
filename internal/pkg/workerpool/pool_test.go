package workerpool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	pool := New(5, 10)
	require.NotNil(t, pool)
	assert.Equal(t, 5, pool.workers)
	assert.Equal(t, 10, cap(pool.jobs))
	defer pool.Stop()
}

func TestNew_Defaults(t *testing.T) {
	pool := New(0, 0)
	defer pool.Stop()
	assert.Equal(t, 1, pool.workers)
	assert.Equal(t, 2, cap(pool.jobs))
}

func TestPool_TrySubmitRunsJobs(t *testing.T) {
	pool := New(2, 16)
	defer pool.Stop()

	var wg sync.WaitGroup
	var executed atomic.Int32

	for i := 0; i < 5; i++ {
		wg.Add(1)
		ok := pool.TrySubmit(func() {
			defer wg.Done()
			executed.Add(1)
		})
		require.True(t, ok)
	}

	wg.Wait()
	assert.Equal(t, int32(5), executed.Load())
}

func TestPool_BoundedConcurrency(t *testing.T) {
	pool := New(3, 32)
	defer pool.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	active, maxActive := 0, 0

	for i := 0; i < 10; i++ {
		wg.Add(1)
		require.True(t, pool.TrySubmit(func() {
			defer wg.Done()
			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			time.Sleep(10 * time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}))
	}

	wg.Wait()
	assert.LessOrEqual(t, maxActive, 3)
}

func TestPool_FullQueueDrops(t *testing.T) {
	pool := New(1, 1)
	defer pool.Stop()

	release := make(chan struct{})
	started := make(chan struct{})

	// Occupy the only worker.
	require.True(t, pool.TrySubmit(func() {
		close(started)
		<-release
	}))
	<-started

	// Fill the single queue slot.
	require.True(t, pool.TrySubmit(func() {}))

	// Queue is full now.
	assert.False(t, pool.TrySubmit(func() {}))
	assert.Equal(t, 1, pool.Queued())

	close(release)
}

func TestPool_StopDrainsQueuedAndRejectsNew(t *testing.T) {
	pool := New(1, 8)

	var executed atomic.Int32
	for i := 0; i < 4; i++ {
		pool.TrySubmit(func() {
			time.Sleep(5 * time.Millisecond)
			executed.Add(1)
		})
	}

	pool.Stop()
	assert.Equal(t, int32(4), executed.Load())

	assert.False(t, pool.TrySubmit(func() { executed.Add(1) }))
	pool.Stop() // idempotent
	assert.Equal(t, int32(4), executed.Load())
}
