package subscription

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository keeps subscriptions in process. Every method holds the
// lock for its whole check-and-write, so Transition and Insert are atomic
// in the same way the database backends are. It also serves the stats,
// history and retention contracts, which makes it a complete backend for
// development and tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	subs    map[uuid.UUID]*Subscription
	history []HistoryEntry
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{subs: make(map[uuid.UUID]*Subscription)}
}

func (r *MemoryRepository) FindActiveOrPausedByCustomer(_ context.Context, customerID uuid.UUID) (*Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s := r.liveLocked(customerID); s != nil {
		return s.Clone(), nil
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) FindByCustomerAndStatus(_ context.Context, customerID uuid.UUID, status Status) (*Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *Subscription
	for _, s := range r.subs {
		if s.CustomerID != customerID || s.Status != status {
			continue
		}
		if found == nil || s.CreatedAt.After(found.CreatedAt) {
			found = s
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found.Clone(), nil
}

func (r *MemoryRepository) Insert(_ context.Context, sub *Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.subs[sub.ID]; exists {
		return ErrConflict
	}
	if sub.Status.Live() && r.liveLocked(sub.CustomerID) != nil {
		return ErrConflict
	}
	r.subs[sub.ID] = sub.Clone()
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, sub *Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.subs[sub.ID]
	if !ok || s.CustomerID != sub.CustomerID || !s.Status.Live() {
		return ErrNotFound
	}
	s.Address = sub.Address
	s.Allergies = sub.Allergies
	s.UpdatedAt = sub.UpdatedAt
	return nil
}

func (r *MemoryRepository) Transition(_ context.Context, customerID uuid.UUID, from []Status, to Status, at time.Time) (*Subscription, Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.subs {
		if s.CustomerID == customerID && slices.Contains(from, s.Status) {
			prev := s.Status
			s.Apply(to, at)
			return s.Clone(), prev, nil
		}
	}
	return nil, "", ErrNotFound
}

func (r *MemoryRepository) Delete(_ context.Context, customerID, subscriptionID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.subs[subscriptionID]
	if !ok || s.CustomerID != customerID {
		return ErrNotFound
	}
	delete(r.subs, subscriptionID)
	return nil
}

// Append implements HistoryStore.
func (r *MemoryRepository) Append(_ context.Context, entry HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.history = append(r.history, entry)
	return nil
}

// ListByCustomer implements HistoryStore.
func (r *MemoryRepository) ListByCustomer(_ context.Context, customerID uuid.UUID, limit int) ([]HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Walk backwards so entries with equal timestamps stay newest first.
	var out []HistoryEntry
	for i := len(r.history) - 1; i >= 0; i-- {
		if e := r.history[i]; e.CustomerID == customerID {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b HistoryEntry) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CountCreated counts subscriptions created within [from, to].
func (r *MemoryRepository) CountCreated(_ context.Context, from, to time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, s := range r.subs {
		if within(s.CreatedAt, from, to) {
			n++
		}
	}
	return n, nil
}

// SumPlanPrice sums the price snapshot of subscriptions in status created within [from, to].
func (r *MemoryRepository) SumPlanPrice(_ context.Context, status Status, from, to time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sum int64
	for _, s := range r.subs {
		if s.Status == status && within(s.CreatedAt, from, to) {
			sum += s.PlanPrice
		}
	}
	return sum, nil
}

// CountByStatus counts subscriptions in status regardless of dates.
func (r *MemoryRepository) CountByStatus(_ context.Context, status Status) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, s := range r.subs {
		if s.Status == status {
			n++
		}
	}
	return n, nil
}

// SumMonthlyEstimate sums the monthly estimate of subscriptions in status.
func (r *MemoryRepository) SumMonthlyEstimate(_ context.Context, status Status) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sum int64
	for _, s := range r.subs {
		if s.Status == status {
			sum += s.MonthlyEstimate
		}
	}
	return sum, nil
}

// PurgeCancelled deletes cancelled subscriptions cancelled before the cutoff.
func (r *MemoryRepository) PurgeCancelled(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, s := range r.subs {
		if s.Status == StatusCancelled && s.CancelledAt != nil && s.CancelledAt.Before(before) {
			delete(r.subs, id)
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) liveLocked(customerID uuid.UUID) *Subscription {
	var found *Subscription
	for _, s := range r.subs {
		if s.CustomerID == customerID && s.Status.Live() {
			if found == nil || s.CreatedAt.After(found.CreatedAt) {
				found = s
			}
		}
	}
	return found
}

func within(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}
