package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/seacatering/pkg/ratelimiter"
	"github.com/dmitrymomot/seacatering/pkg/redis"
)

func connect(t *testing.T) (*miniredis.Miniredis, redis.Config) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, redis.Config{
		ConnectionURL:  "redis://" + mr.Addr() + "/0",
		RetryAttempts:  2,
		RetryInterval:  10 * time.Millisecond,
		ConnectTimeout: time.Second,
		KeyPrefix:      "test:",
	}
}

func TestConnect(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		_, cfg := connect(t)
		client, err := redis.Connect(context.Background(), cfg)
		require.NoError(t, err)
		defer client.Close()

		assert.NoError(t, redis.Healthcheck(client)(context.Background()))
	})

	t.Run("invalid url", func(t *testing.T) {
		t.Parallel()
		_, err := redis.Connect(context.Background(), redis.Config{ConnectionURL: "://nope"})
		assert.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)
	})

	t.Run("empty url", func(t *testing.T) {
		t.Parallel()
		_, err := redis.Connect(context.Background(), redis.Config{})
		assert.ErrorIs(t, err, redis.ErrEmptyConnectionURL)
	})

	t.Run("server gone", func(t *testing.T) {
		t.Parallel()
		mr, cfg := connect(t)
		mr.Close()
		_, err := redis.Connect(context.Background(), cfg)
		assert.ErrorIs(t, err, redis.ErrRedisNotReady)
	})
}

func TestStorage(t *testing.T) {
	t.Parallel()

	mr, cfg := connect(t)
	client, err := redis.Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	s := redis.NewStorage(client, cfg.KeyPrefix)
	ctx := context.Background()

	val, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, s.Set(ctx, "stats:a", []byte(`{"total_active":3}`), time.Minute))
	require.NoError(t, s.Set(ctx, "stats:b", []byte(`{}`), 0))
	require.NoError(t, s.Set(ctx, "other", []byte(`x`), 0))
	assert.True(t, mr.Exists("test:stats:a"))

	val, err = s.Get(ctx, "stats:a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_active":3}`, string(val))

	mr.FastForward(2 * time.Minute)
	val, err = s.Get(ctx, "stats:a")
	require.NoError(t, err)
	assert.Nil(t, val)

	n, err := s.DeleteMatching(ctx, "stats:*")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.True(t, mr.Exists("test:other"))

	require.NoError(t, s.Delete(ctx, "other"))
	assert.False(t, mr.Exists("test:other"))

	assert.ErrorIs(t, s.Set(ctx, "", nil, 0), redis.ErrEmptyKey)
}

func TestBucketStore(t *testing.T) {
	t.Parallel()

	mr, cfg := connect(t)
	client, err := redis.Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	limiter, err := ratelimiter.New(
		redis.NewBucketStore(client, cfg.KeyPrefix+"ratelimit:"),
		ratelimiter.Config{Enabled: true, Capacity: 2, RefillRate: 1, RefillInterval: time.Second},
		ratelimiter.WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)
	ctx := context.Background()

	res, err := limiter.Allow(ctx, "customer:1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 1, res.Remaining)
	assert.Equal(t, 2, res.Limit)
	assert.True(t, mr.Exists("test:ratelimit:customer:1"))

	res, err = limiter.Allow(ctx, "customer:1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = limiter.Allow(ctx, "customer:1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.True(t, res.ResetAt.Equal(now.Add(time.Second)))

	now = now.Add(1500 * time.Millisecond)
	res, err = limiter.Allow(ctx, "customer:1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)

	res, err = limiter.Allow(ctx, "customer:2")
	require.NoError(t, err)
	assert.True(t, res.Allowed, "buckets are per key")

	assert.Greater(t, mr.TTL("test:ratelimit:customer:1"), time.Duration(0))
}
