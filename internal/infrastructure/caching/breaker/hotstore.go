// Package breaker wraps a HotStore with a circuit breaker so request-path
// callers stop waiting on Redis once it is known to be failing.
package breaker

import (
	"context"
	"fmt"
	"time"

	zlog "github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/application/counter"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/metrics"
)

type Settings struct {
	Name string
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
}

func (s Settings) withDefaults() Settings {
	if s.Name == "" {
		s.Name = "hot-store"
	}
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 10 * time.Second
	}
	return s
}

type HotStore struct {
	next counter.HotStore
	cb   *gobreaker.CircuitBreaker[any]
}

var _ counter.HotStore = (*HotStore)(nil)

func Wrap(next counter.HotStore, st Settings) *HotStore {
	st = st.withDefaults()
	metrics.SetBreakerState(st.Name, 0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        st.Name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     st.OpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= st.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			zlog.Warn().
				Str("component", "breaker").
				Str("name", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
			metrics.SetBreakerState(name, stateValue(to))
		},
	})
	return &HotStore{next: next, cb: cb}
}

func (h *HotStore) State() gobreaker.State { return h.cb.State() }

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func run[T any](h *HotStore, fn func() (T, error)) (T, error) {
	var zero T
	out, err := h.cb.Execute(func() (any, error) { return fn() })
	if err != nil {
		return zero, err
	}
	v, ok := out.(T)
	if !ok {
		return zero, fmt.Errorf("breaker: unexpected result type %T", out)
	}
	return v, nil
}

func (h *HotStore) IncrBy(ctx context.Context, key string, delta int64) (int64, error) {
	return run(h, func() (int64, error) { return h.next.IncrBy(ctx, key, delta) })
}

func (h *HotStore) SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return run(h, func() (bool, error) { return h.next.SetIfAbsent(ctx, key, ttl) })
}

func (h *HotStore) Unset(ctx context.Context, key string) error {
	_, err := run(h, func() (struct{}, error) { return struct{}{}, h.next.Unset(ctx, key) })
	return err
}

func (h *HotStore) Get(ctx context.Context, key string) (int64, error) {
	return run(h, func() (int64, error) { return h.next.Get(ctx, key) })
}

func (h *HotStore) MGet(ctx context.Context, keys ...string) ([]int64, error) {
	return run(h, func() ([]int64, error) { return h.next.MGet(ctx, keys...) })
}

func (h *HotStore) Drain(ctx context.Context, key string) (int64, error) {
	return run(h, func() (int64, error) { return h.next.Drain(ctx, key) })
}

func (h *HotStore) Pending(ctx context.Context) ([]string, error) {
	return run(h, func() ([]string, error) { return h.next.Pending(ctx) })
}
