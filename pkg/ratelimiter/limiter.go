package ratelimiter

import (
	"context"
	"errors"
	"time"
)

// Result is the outcome of a single Allow call.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time // next refill
}

// RetryAfter is zero for allowed requests.
func (r Result) RetryAfter(now time.Time) time.Duration {
	if r.Allowed || !r.ResetAt.After(now) {
		return 0
	}
	return r.ResetAt.Sub(now)
}

// Store keeps bucket state. Take refills the bucket for now, then takes
// one token when available. Denied calls leave the bucket untouched.
type Store interface {
	Take(ctx context.Context, key string, cfg Config, now time.Time) (Result, error)
}

// Limiter applies one Config to many keys.
type Limiter struct {
	store Store
	cfg   Config
	now   func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// New validates cfg and returns a limiter backed by store.
func New(store Store, cfg Config, opts ...Option) (*Limiter, error) {
	if store == nil {
		panic("ratelimiter: store is required")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	l := &Limiter{store: store, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Allow takes a token from key's bucket.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	res, err := l.store.Take(ctx, key, l.cfg, l.now())
	if err != nil {
		return Result{}, errors.Join(ErrStoreUnavailable, err)
	}
	return res, nil
}

// Now exposes the limiter clock so callers compute Retry-After consistently.
func (l *Limiter) Now() time.Time {
	return l.now()
}
