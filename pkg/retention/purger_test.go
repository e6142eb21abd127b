package retention_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/seacatering/pkg/retention"
	"github.com/dmitrymomot/seacatering/pkg/schedule"
	"github.com/dmitrymomot/seacatering/pkg/subscription"
)

var now = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

func cancelledAt(t *testing.T, repo *subscription.MemoryRepository, at time.Time) uuid.UUID {
	t.Helper()
	customer := uuid.New()
	err := repo.Insert(context.Background(), &subscription.Subscription{
		ID:           uuid.New(),
		CustomerID:   customer,
		MealTypes:    []schedule.MealType{schedule.Dinner},
		DeliveryDays: []schedule.DeliveryDay{schedule.Friday},
		Address:      "somewhere",
		Status:       subscription.StatusActive,
		CreatedAt:    at.Add(-time.Hour),
	})
	require.NoError(t, err)
	_, _, err = repo.Transition(context.Background(), customer,
		[]subscription.Status{subscription.StatusActive}, subscription.StatusCancelled, at)
	require.NoError(t, err)
	return customer
}

func TestPurger_Run(t *testing.T) {
	t.Parallel()

	repo := subscription.NewMemoryRepository()
	old := cancelledAt(t, repo, now.Add(-100*24*time.Hour))
	recent := cancelledAt(t, repo, now.Add(-10*24*time.Hour))

	var hooked int64
	p, err := retention.NewPurger(repo, 90*24*time.Hour,
		retention.WithClock(func() time.Time { return now }),
		retention.WithRunHook(func(n int64, _ error) { hooked = n }),
	)
	require.NoError(t, err)

	n, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, int64(1), hooked)

	_, err = repo.FindByCustomerAndStatus(context.Background(), old, subscription.StatusCancelled)
	assert.ErrorIs(t, err, subscription.ErrNotFound)
	_, err = repo.FindByCustomerAndStatus(context.Background(), recent, subscription.StatusCancelled)
	assert.NoError(t, err)
}

func TestPurger_LeavesLiveSubscriptions(t *testing.T) {
	t.Parallel()

	repo := subscription.NewMemoryRepository()
	customer := uuid.New()
	require.NoError(t, repo.Insert(context.Background(), &subscription.Subscription{
		ID:         uuid.New(),
		CustomerID: customer,
		Status:     subscription.StatusActive,
		CreatedAt:  now.Add(-365 * 24 * time.Hour),
	}))

	p, err := retention.NewPurger(repo, time.Hour, retention.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	n, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

type brokenTarget struct{}

func (brokenTarget) PurgeCancelled(context.Context, time.Time) (int64, error) {
	return 0, errors.New("disk full")
}

func TestPurger_Errors(t *testing.T) {
	t.Parallel()

	_, err := retention.NewPurger(brokenTarget{}, 0)
	assert.ErrorIs(t, err, retention.ErrInvalidRetention)

	p, err := retention.NewPurger(brokenTarget{}, time.Hour)
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	assert.ErrorIs(t, err, retention.ErrPurgeFailed)

	assert.Panics(t, func() { _, _ = retention.NewPurger(nil, time.Hour) })
}

func TestScheduler(t *testing.T) {
	t.Parallel()

	p, err := retention.NewPurger(subscription.NewMemoryRepository(), time.Hour)
	require.NoError(t, err)

	_, err = retention.NewScheduler(p, "not a schedule", time.Minute)
	assert.ErrorIs(t, err, retention.ErrInvalidSchedule)

	s, err := retention.NewScheduler(p, "@daily", time.Minute)
	require.NoError(t, err)
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}
