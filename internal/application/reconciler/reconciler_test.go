package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/application/counter"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/application/events"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/infrastructure/caching/memory"
)

// --- Fakes ---

type memWriter struct {
	mu     sync.Mutex
	counts map[string]int64
	fail   map[string]error
	block  map[string]bool
}

func newMemWriter() *memWriter {
	return &memWriter{counts: map[string]int64{}, fail: map[string]error{}, block: map[string]bool{}}
}

func (w *memWriter) AddViews(ctx context.Context, kind domain.EntityKind, id string, delta int64) error {
	w.mu.Lock()
	block := w.block[id]
	err := w.fail[id]
	w.mu.Unlock()

	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.counts[string(kind)+":"+id] += delta
	return nil
}

func (w *memWriter) get(kind domain.EntityKind, id string) int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.counts[string(kind)+":"+id]
}

type countingPublisher struct {
	mu       sync.Mutex
	payloads []any
}

func (p *countingPublisher) PublishEvent(ctx context.Context, routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

func incr(t *testing.T, s counter.HotStore, kind domain.EntityKind, id string, n int64) {
	t.Helper()
	_, err := s.IncrBy(context.Background(), counter.CounterKey(kind, id), n)
	require.NoError(t, err)
}

func hot(t *testing.T, s counter.HotStore, kind domain.EntityKind, id string) int64 {
	t.Helper()
	v, err := s.Get(context.Background(), counter.CounterKey(kind, id))
	require.NoError(t, err)
	return v
}

// --- Tests ---

func TestReconciler_RunMovesDeltasAndIsIdempotent(t *testing.T) {
	store := memory.New(nil)
	w := newMemWriter()
	pub := &countingPublisher{}
	r := New(store, w, pub, Options{})

	incr(t, store, domain.KindList, "L1", 3)
	incr(t, store, domain.KindListItem, "I1", 1)
	incr(t, store, domain.KindListItem, "I2", 2)

	run, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, run.ListsUpdated)
	assert.Equal(t, 2, run.ItemsUpdated)
	assert.Empty(t, run.Errors)
	assert.Empty(t, run.Skipped)

	assert.Equal(t, int64(3), w.get(domain.KindList, "L1"))
	assert.Equal(t, int64(2), w.get(domain.KindListItem, "I2"))
	assert.Equal(t, int64(0), hot(t, store, domain.KindList, "L1"))

	run, err = r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, run.Updated())
	assert.Equal(t, int64(3), w.get(domain.KindList, "L1"))

	last, ok := r.LastRun()
	require.True(t, ok)
	assert.Equal(t, 0, last.Updated())

	require.Len(t, pub.payloads, 2)
	assert.Equal(t, events.ViewsSyncedPayload{ListsUpdated: 1, ItemsUpdated: 2}, pub.payloads[0])
}

func TestReconciler_OneFailingEntityKeepsItsDelta(t *testing.T) {
	store := memory.New(nil)
	w := newMemWriter()
	r := New(store, w, nil, Options{})

	for i := 1; i <= 5; i++ {
		incr(t, store, domain.KindListItem, fmt.Sprintf("I%d", i), int64(i))
	}
	w.fail["I3"] = errors.New("connection refused")

	run, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, run.Updated())
	assert.Equal(t, []string{"I3"}, run.ErrorIDs())
	assert.Equal(t, domain.KindListItem, run.Errors[0].Kind)

	// delta restored for the next run
	assert.Equal(t, int64(3), hot(t, store, domain.KindListItem, "I3"))

	delete(w.fail, "I3")
	run, err = r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, run.Updated())
	assert.Equal(t, int64(3), w.get(domain.KindListItem, "I3"))
}

func TestReconciler_DeletedTargetIsReportedNotLost(t *testing.T) {
	store := memory.New(nil)
	w := newMemWriter()
	w.fail["gone"] = domain.ErrNotFound("list not found")
	r := New(store, w, nil, Options{})

	incr(t, store, domain.KindList, "gone", 2)

	run, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gone"}, run.ErrorIDs())
	assert.Equal(t, int64(2), hot(t, store, domain.KindList, "gone"))
}

func TestReconciler_DeadlineSkipsRemainingKeys(t *testing.T) {
	store := memory.New(nil)
	w := newMemWriter()
	w.block["A"] = true
	r := New(store, w, nil, Options{MaxDuration: 20 * time.Millisecond})

	incr(t, store, domain.KindListItem, "A", 1)
	incr(t, store, domain.KindListItem, "B", 1)
	incr(t, store, domain.KindListItem, "C", 1)

	run, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, run.Updated())
	assert.Equal(t, []string{"A"}, run.ErrorIDs())
	assert.Equal(t, []string{
		counter.CounterKey(domain.KindListItem, "B"),
		counter.CounterKey(domain.KindListItem, "C"),
	}, run.Skipped)

	// nothing lost: A was restored, B and C untouched
	assert.Equal(t, int64(1), hot(t, store, domain.KindListItem, "A"))
	assert.Equal(t, int64(1), hot(t, store, domain.KindListItem, "B"))
	assert.Equal(t, int64(1), hot(t, store, domain.KindListItem, "C"))
}

func TestReconciler_HotStoreDownRaises(t *testing.T) {
	store := memory.New(nil)
	store.Fail(errors.New("dial tcp: refused"))
	r := New(store, newMemWriter(), nil, Options{})

	_, err := r.Run(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeUnavailable))
}

func TestReconciler_IgnoresMalformedPendingKeys(t *testing.T) {
	store := memory.New(nil)
	_, err := store.IncrBy(context.Background(), "views:bogus:x", 1)
	require.NoError(t, err)
	incr(t, store, domain.KindList, "L1", 1)

	r := New(store, newMemWriter(), nil, Options{})
	run, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, run.ListsUpdated)
	assert.Empty(t, run.Errors)
}

func TestReconciler_ConcurrentRunsLoseNothing(t *testing.T) {
	store := memory.New(nil)
	w := newMemWriter()
	r := New(store, w, nil, Options{})

	const ids = 20
	const perID = 50

	var wg sync.WaitGroup
	for i := 0; i < ids; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := counter.CounterKey(domain.KindListItem, fmt.Sprintf("I%d", i))
			for j := 0; j < perID; j++ {
				_, _ = store.IncrBy(context.Background(), key, 1)
			}
		}(i)
	}
	for k := 0; k < 4; k++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				_, _ = r.Run(context.Background())
			}
		}()
	}
	wg.Wait()

	_, err := r.Run(context.Background())
	require.NoError(t, err)

	var total int64
	for i := 0; i < ids; i++ {
		total += w.get(domain.KindListItem, fmt.Sprintf("I%d", i))
	}
	assert.Equal(t, int64(ids*perID), total)
}

func TestReconciler_StartStopsOnCancel(t *testing.T) {
	store := memory.New(nil)
	w := newMemWriter()
	r := New(store, w, nil, Options{})
	incr(t, store, domain.KindList, "L1", 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		return w.get(domain.KindList, "L1") == 1
	}, time.Second, 10*time.Millisecond)
}
