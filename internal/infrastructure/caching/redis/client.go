package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const (
	pingTimeout = 2 * time.Second

	// generation keys only need to outlive in-flight cache fills
	generationTTL = 24 * time.Hour
)

// KEYS[1]=value KEYS[2]=generation, ARGV[1]=json ARGV[2]=ttl ms ARGV[3]=expected generation
var setIfGenerationScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[2]) or '0'
if cur ~= ARGV[3] then
  return 0
end
if tonumber(ARGV[2]) > 0 then
  redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
else
  redis.call('SET', KEYS[1], ARGV[1])
end
return 1
`)

// KEYS[1]=value KEYS[2]=generation, ARGV[1]=generation ttl seconds
var invalidateScript = redis.NewScript(`
redis.call('INCR', KEYS[2])
redis.call('EXPIRE', KEYS[2], ARGV[1])
redis.call('DEL', KEYS[1])
return 1
`)

// Client is the shared Redis connection. It doubles as the JSON value cache
// behind the reaction aggregates; NewHotStore builds the counter store on it.
type Client struct {
	rdb *redis.Client
}

// New dials url (redis://[:password@]host:port/db) and fails fast when the
// server does not answer a PING.
func New(url string) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	c := &Client{rdb: redis.NewClient(opts)}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return c, nil
}

// NewFromClient wraps an existing go-redis client (tests, shared pools).
func NewFromClient(rdb *redis.Client) *Client { return &Client{rdb: rdb} }

func (c *Client) Close() error                   { return c.rdb.Close() }
func (c *Client) Ping(ctx context.Context) error { return c.rdb.Ping(ctx).Err() }

// Get decodes a cached JSON value into dest. A missing key is (false, nil);
// a value that no longer decodes is dropped and reported as a miss.
func (c *Client) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		return false, nil
	}
	return true, nil
}

func (c *Client) Set(ctx context.Context, key string, val any, ttl time.Duration) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

// Delete removes keys without blocking the server on large values.
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Unlink(ctx, keys...).Err()
}

// Generation returns the invalidation generation of genKey, 0 when absent.
func (c *Client) Generation(ctx context.Context, genKey string) (int64, error) {
	gen, err := c.rdb.Get(ctx, genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache generation %s: %w", genKey, err)
	}
	return gen, nil
}

// SetIfGeneration stores val only while genKey is still at gen, so a value
// computed before an Invalidate can never be written back after it.
func (c *Client) SetIfGeneration(ctx context.Context, key string, val any, ttl time.Duration, genKey string, gen int64) (bool, error) {
	raw, err := json.Marshal(val)
	if err != nil {
		return false, fmt.Errorf("cache encode %s: %w", key, err)
	}
	n, err := setIfGenerationScript.Run(ctx, c.rdb, []string{key, genKey}, raw, ttl.Milliseconds(), gen).Int64()
	if err != nil {
		return false, fmt.Errorf("cache set %s: %w", key, err)
	}
	return n == 1, nil
}

// Invalidate bumps genKey and removes key atomically.
func (c *Client) Invalidate(ctx context.Context, key, genKey string) error {
	if err := invalidateScript.Run(ctx, c.rdb, []string{key, genKey}, int64(generationTTL.Seconds())).Err(); err != nil {
		return fmt.Errorf("cache invalidate %s: %w", key, err)
	}
	return nil
}
