package testimonial

import (
	"context"
	"slices"
	"sync"
)

type memoryStore struct {
	mu    sync.RWMutex
	items []Testimonial
}

// NewMemoryStore returns an in-process Store.
func NewMemoryStore() Store {
	return &memoryStore{}
}

func (m *memoryStore) Insert(_ context.Context, t Testimonial) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.items {
		if existing.CustomerID == t.CustomerID && existing.SubscriptionID == t.SubscriptionID {
			return ErrAlreadySubmitted
		}
	}
	m.items = append(m.items, t)
	return nil
}

func (m *memoryStore) ListFeatured(_ context.Context, limit int) ([]Testimonial, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Testimonial, 0, limit)
	for _, t := range m.items {
		if t.Featured {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b Testimonial) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
