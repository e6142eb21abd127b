package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/seacatering/pkg/ratelimiter"
)

// takeScript refills and takes one token atomically. Times are unix
// milliseconds supplied by the caller so every instance shares one clock
// source per request.
var takeScript = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local now = tonumber(ARGV[4])
local ttl = tonumber(ARGV[5])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'refilled')
local tokens = tonumber(state[1])
local refilled = tonumber(state[2])
if tokens == nil or refilled == nil then
  tokens = capacity
  refilled = now
end

local n = math.floor((now - refilled) / interval)
if n > 0 then
  tokens = math.min(capacity, tokens + n * rate)
  refilled = refilled + n * interval
end

local allowed = 0
if tokens > 0 then
  tokens = tokens - 1
  allowed = 1
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'refilled', refilled)
redis.call('PEXPIRE', KEYS[1], ttl)
return {allowed, tokens, refilled + interval}
`)

// BucketStore keeps rate limiter buckets in redis hashes, shared by every
// instance of the service.
type BucketStore struct {
	db     redis.Scripter
	prefix string
}

// NewBucketStore stores buckets under prefix.
func NewBucketStore(client redis.Scripter, prefix string) *BucketStore {
	if client == nil {
		panic("redis: client is required")
	}
	return &BucketStore{db: client, prefix: prefix}
}

func (s *BucketStore) Take(ctx context.Context, key string, cfg ratelimiter.Config, now time.Time) (ratelimiter.Result, error) {
	if key == "" {
		return ratelimiter.Result{}, ErrEmptyKey
	}

	res, err := takeScript.Run(ctx, s.db, []string{s.prefix + key},
		cfg.Capacity,
		cfg.RefillRate,
		cfg.RefillInterval.Milliseconds(),
		now.UnixMilli(),
		cfg.FullAfter().Milliseconds(),
	).Int64Slice()
	if err != nil {
		return ratelimiter.Result{}, err
	}
	if len(res) != 3 {
		return ratelimiter.Result{}, fmt.Errorf("redis: unexpected bucket reply of %d values", len(res))
	}

	return ratelimiter.Result{
		Allowed:   res[0] == 1,
		Limit:     cfg.Capacity,
		Remaining: int(res[1]),
		ResetAt:   time.UnixMilli(res[2]),
	}, nil
}
