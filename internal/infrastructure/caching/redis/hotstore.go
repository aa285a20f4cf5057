package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/application/counter"
)

// KEYS[1]=counter KEYS[2]=pending set, ARGV[1]=delta
var incrScript = redis.NewScript(`
local v = redis.call('INCRBY', KEYS[1], ARGV[1])
redis.call('SADD', KEYS[2], KEYS[1])
return v
`)

// KEYS[1]=counter KEYS[2]=pending set
var drainScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
redis.call('DEL', KEYS[1])
redis.call('SREM', KEYS[2], KEYS[1])
if not v then
  return 0
end
return tonumber(v)
`)

// HotStore implements counter.HotStore on top of a shared Client.
type HotStore struct {
	rdb *redis.Client
}

func NewHotStore(c *Client) *HotStore { return &HotStore{rdb: c.rdb} }

var _ counter.HotStore = (*HotStore)(nil)

func (s *HotStore) IncrBy(ctx context.Context, key string, delta int64) (int64, error) {
	v, err := incrScript.Run(ctx, s.rdb, []string{key, counter.PendingSetKey}, delta).Int64()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", key, err)
	}
	return v, nil
}

func (s *HotStore) SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, key, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setnx %s: %w", key, err)
	}
	return ok, nil
}

func (s *HotStore) Unset(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

func (s *HotStore) Get(ctx context.Context, key string) (int64, error) {
	v, err := s.rdb.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", key, err)
	}
	return v, nil
}

func (s *HotStore) MGet(ctx context.Context, keys ...string) ([]int64, error) {
	out := make([]int64, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget: %w", err)
	}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("mget %s: %w", keys[i], err)
		}
		out[i] = n
	}
	return out, nil
}

func (s *HotStore) Drain(ctx context.Context, key string) (int64, error) {
	v, err := drainScript.Run(ctx, s.rdb, []string{key, counter.PendingSetKey}).Int64()
	if err != nil {
		return 0, fmt.Errorf("drain %s: %w", key, err)
	}
	return v, nil
}

func (s *HotStore) Pending(ctx context.Context) ([]string, error) {
	keys, err := s.rdb.SMembers(ctx, counter.PendingSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("pending: %w", err)
	}
	return keys, nil
}
