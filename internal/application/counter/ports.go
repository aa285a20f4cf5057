// Package counter defines the hot counter store contract shared by the view
// ingestor and the sync reconciler, plus the key scheme both sides agree on.
package counter

import (
	"context"
	"time"
)

// HotStore is the low-latency accumulator in front of the durable store.
// Every method must be atomic on its own; callers never pair a read with a
// write across calls.
type HotStore interface {
	// IncrBy adds delta to key and tracks key in the pending set in the same step.
	IncrBy(ctx context.Context, key string, delta int64) (int64, error)
	// SetIfAbsent places a presence marker with a TTL. It reports true only
	// when the marker did not exist before the call.
	SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Unset removes a presence marker.
	Unset(ctx context.Context, key string) error
	// Get returns 0 for missing keys.
	Get(ctx context.Context, key string) (int64, error)
	MGet(ctx context.Context, keys ...string) ([]int64, error)
	// Drain returns the current value and resets it to zero, dropping the key
	// from the pending set, as one indivisible step.
	Drain(ctx context.Context, key string) (int64, error)
	// Pending lists counter keys that may hold an un-synced delta.
	Pending(ctx context.Context) ([]string, error)
}
