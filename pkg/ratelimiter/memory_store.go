package ratelimiter

import (
	"context"
	"sync"
	"time"
)

// sweepEvery is the number of Take calls between idle bucket sweeps.
const sweepEvery = 1024

type bucket struct {
	tokens   int
	refilled time.Time
}

// MemoryStore keeps buckets in process. Suitable for a single instance.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	calls   int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[string]*bucket)}
}

func (s *MemoryStore) Take(_ context.Context, key string, cfg Config, now time.Time) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.calls%sweepEvery == 0 {
		s.sweep(cfg, now)
	}

	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{tokens: cfg.Capacity, refilled: now}
		s.buckets[key] = b
	}

	// whole intervals only, the partial one keeps counting from refilled
	if n := int(now.Sub(b.refilled) / cfg.RefillInterval); n > 0 {
		b.tokens = min(cfg.Capacity, b.tokens+n*cfg.RefillRate)
		b.refilled = b.refilled.Add(time.Duration(n) * cfg.RefillInterval)
	}

	res := Result{Limit: cfg.Capacity, ResetAt: b.refilled.Add(cfg.RefillInterval)}
	if b.tokens > 0 {
		b.tokens--
		res.Allowed = true
	}
	res.Remaining = b.tokens
	return res, nil
}

// Len reports the number of tracked buckets.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// sweep drops buckets idle long enough to be full again, which is the
// same state as an absent bucket.
func (s *MemoryStore) sweep(cfg Config, now time.Time) {
	idle := cfg.FullAfter()
	for key, b := range s.buckets {
		if now.Sub(b.refilled) >= idle {
			delete(s.buckets, key)
		}
	}
}
