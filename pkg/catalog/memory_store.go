package catalog

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu    sync.RWMutex
	plans map[uuid.UUID]Plan
}

// NewMemoryStore returns an in-process Store.
func NewMemoryStore() Store {
	return &memoryStore{plans: make(map[uuid.UUID]Plan)}
}

func (s *memoryStore) List(_ context.Context) ([]Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Plan, 0, len(s.plans))
	for _, p := range s.plans {
		out = append(out, p)
	}
	return out, nil
}

func (s *memoryStore) GetByID(_ context.Context, id uuid.UUID) (Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.plans[id]
	if !ok {
		return Plan{}, ErrPlanNotFound
	}
	return p, nil
}

func (s *memoryStore) GetByName(_ context.Context, name PlanName) (Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.plans {
		if p.Name == name {
			return p, nil
		}
	}
	return Plan{}, ErrPlanNotFound
}

func (s *memoryStore) Insert(_ context.Context, plan Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.plans {
		if p.Name == plan.Name {
			return ErrDuplicatePlan
		}
	}
	s.plans[plan.ID] = plan
	return nil
}
