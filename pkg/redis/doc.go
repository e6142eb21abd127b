// Package redis connects to Redis with retries. It provides a small
// namespaced byte store used for caching admin reports and a token bucket
// store for the request rate limiter.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	cache := redis.NewStorage(client, cfg.KeyPrefix)
//	statsSvc := stats.NewService(repo, authz, stats.WithCache(cache, time.Minute))
//
//	buckets := redis.NewBucketStore(client, cfg.KeyPrefix+"ratelimit:")
//	limiter, err := ratelimiter.New(buckets, rlCfg)
//
// Healthcheck plugs the client into the readiness endpoint.
package redis
