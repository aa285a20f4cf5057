// Package memory is an in-process HotStore and cache used by tests and by
// single-instance dev setups running without Redis.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/application/counter"
)

// expired markers are swept at most this often
const markerSweepInterval = time.Minute

type entry struct {
	raw       []byte
	expiresAt time.Time
}

// Store keeps counters, presence markers and JSON cache values behind one mutex,
// which makes every method trivially atomic.
type Store struct {
	mu       sync.Mutex
	now      func() time.Time
	counters map[string]int64
	pending  map[string]struct{}
	markers  map[string]time.Time
	values   map[string]entry
	gens     map[string]int64
	failWith error

	lastSweep time.Time
}

func New(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:      now,
		counters: map[string]int64{},
		pending:  map[string]struct{}{},
		markers:  map[string]time.Time{},
		values:   map[string]entry{},
		gens:     map[string]int64{},
	}
}

var _ counter.HotStore = (*Store)(nil)

// Fail makes every subsequent call return err until Fail(nil).
func (s *Store) Fail(err error) {
	s.mu.Lock()
	s.failWith = err
	s.mu.Unlock()
}

func (s *Store) IncrBy(ctx context.Context, key string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return 0, s.failWith
	}
	s.counters[key] += delta
	s.pending[key] = struct{}{}
	return s.counters[key], nil
}

func (s *Store) SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return false, s.failWith
	}
	now := s.now()
	s.sweepMarkersLocked(now)
	if exp, ok := s.markers[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.markers[key] = now.Add(ttl)
	return true, nil
}

func (s *Store) sweepMarkersLocked(now time.Time) {
	if now.Sub(s.lastSweep) < markerSweepInterval {
		return
	}
	s.lastSweep = now
	for k, exp := range s.markers {
		if !now.Before(exp) {
			delete(s.markers, k)
		}
	}
}

func (s *Store) Unset(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	delete(s.markers, key)
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return 0, s.failWith
	}
	return s.counters[key], nil
}

func (s *Store) MGet(ctx context.Context, keys ...string) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := make([]int64, len(keys))
	for i, k := range keys {
		out[i] = s.counters[k]
	}
	return out, nil
}

func (s *Store) Drain(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return 0, s.failWith
	}
	v := s.counters[key]
	delete(s.counters, key)
	delete(s.pending, key)
	return v, nil
}

// Pending is sorted so callers and tests see a deterministic order.
func (s *Store) Pending(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := make([]string, 0, len(s.pending))
	for k := range s.pending {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

// Cache exposes the JSON value side of the store with the same method set as
// the Redis cache client.
type Cache struct{ s *Store }

func (s *Store) Cache() Cache { return Cache{s: s} }

func (c Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s := c.s
	s.mu.Lock()
	e, ok := s.values[key]
	if ok && !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.values, key)
		ok = false
	}
	fail := s.failWith
	s.mu.Unlock()
	if fail != nil {
		return false, fail
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(e.raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c Cache) Set(ctx context.Context, key string, val any, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.putLocked(key, raw, ttl)
	return nil
}

func (s *Store) putLocked(key string, raw []byte, ttl time.Duration) {
	e := entry{raw: raw}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.values[key] = e
}

func (c Cache) Delete(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

// Generation returns the invalidation generation of genKey, 0 when never bumped.
func (c Cache) Generation(ctx context.Context, genKey string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return 0, s.failWith
	}
	return s.gens[genKey], nil
}

// SetIfGeneration stores val only while genKey is still at gen.
func (c Cache) SetIfGeneration(ctx context.Context, key string, val any, ttl time.Duration, genKey string, gen int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return false, err
	}
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return false, s.failWith
	}
	if s.gens[genKey] != gen {
		return false, nil
	}
	s.putLocked(key, raw, ttl)
	return true, nil
}

// Invalidate bumps genKey and drops key in one step.
func (c Cache) Invalidate(ctx context.Context, key, genKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.gens[genKey]++
	delete(s.values, key)
	return nil
}
