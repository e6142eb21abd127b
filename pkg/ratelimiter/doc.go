// Package ratelimiter throttles state changing requests with token buckets.
//
// A Limiter applies one Config to any number of keys, typically one per
// customer. Buckets live in a Store: MemoryStore for a single instance, or
// the Redis backed store from pkg/redis when several instances share load.
//
//	limiter, err := ratelimiter.New(ratelimiter.NewMemoryStore(), cfg)
//	if err != nil {
//		return err
//	}
//	r.Use(ratelimiter.Middleware(limiter, byCustomer,
//		ratelimiter.WithErrorResponder(errs.Write),
//	))
//
// Denied requests receive ErrLimitExceeded through the error responder and
// a Retry-After header.
package ratelimiter
