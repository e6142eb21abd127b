package subscription_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/seacatering/pkg/catalog"
	"github.com/dmitrymomot/seacatering/pkg/schedule"
	"github.com/dmitrymomot/seacatering/pkg/subscription"
	"github.com/dmitrymomot/seacatering/pkg/validator"
)

type planMap struct {
	mu    sync.Mutex
	plans map[uuid.UUID]catalog.Plan
}

func newPlanMap() *planMap {
	pm := &planMap{plans: make(map[uuid.UUID]catalog.Plan)}
	for _, p := range catalog.DefaultPlans() {
		p.ID = uuid.New()
		pm.plans[p.ID] = p
	}
	return pm
}

func (pm *planMap) GetPlan(_ context.Context, id uuid.UUID) (catalog.Plan, error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	p, ok := pm.plans[id]
	if !ok {
		return catalog.Plan{}, catalog.ErrPlanNotFound
	}
	return p, nil
}

func (pm *planMap) byName(name catalog.PlanName) catalog.Plan {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	for _, p := range pm.plans {
		if p.Name == name {
			return p
		}
	}
	panic("unknown plan " + name)
}

func (pm *planMap) setPrice(id uuid.UUID, price int64) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	p := pm.plans[id]
	p.Price = price
	pm.plans[id] = p
}

// countingRepo counts writes reaching the underlying repository.
type countingRepo struct {
	*subscription.MemoryRepository
	inserts atomic.Int32
}

func (r *countingRepo) Insert(ctx context.Context, sub *subscription.Subscription) error {
	r.inserts.Add(1)
	return r.MemoryRepository.Insert(ctx, sub)
}

// planGoneRepo fails inserts the way a backend does when the plan row
// disappears after the lookup.
type planGoneRepo struct {
	*subscription.MemoryRepository
}

func (planGoneRepo) Insert(context.Context, *subscription.Subscription) error {
	return catalog.ErrPlanNotFound
}

type recordingObserver struct {
	mu          sync.Mutex
	created     []catalog.PlanName
	transitions []subscription.Event
	rejected    []string
}

func (o *recordingObserver) SubscriptionCreated(plan catalog.PlanName) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.created = append(o.created, plan)
}

func (o *recordingObserver) SubscriptionTransitioned(event subscription.Event, _, _ subscription.Status) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transitions = append(o.transitions, event)
}

func (o *recordingObserver) SubscriptionRejected(op string, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rejected = append(o.rejected, op)
}

type fixture struct {
	svc   subscription.Service
	repo  *countingRepo
	plans *planMap
	obs   *recordingObserver
}

func setup(t *testing.T, opts ...subscription.ServiceOption) fixture {
	t.Helper()

	repo := &countingRepo{MemoryRepository: subscription.NewMemoryRepository()}
	plans := newPlanMap()
	obs := &recordingObserver{}

	opts = append([]subscription.ServiceOption{
		subscription.WithHistory(repo),
		subscription.WithObserver(obs),
	}, opts...)

	return fixture{
		svc:   subscription.NewService(repo, plans, opts...),
		repo:  repo,
		plans: plans,
		obs:   obs,
	}
}

func (f fixture) proteinParams() subscription.CreateParams {
	return subscription.CreateParams{
		PlanID:       f.plans.byName(catalog.Protein).ID,
		MealTypes:    []string{"Lunch", "Dinner"},
		DeliveryDays: []string{"Monday", "Wednesday", "Friday"},
		Address:      "123 Main St",
	}
}

func TestService_Lifecycle(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()
	customer := uuid.New()

	// scenario: create
	sub, err := f.svc.Create(ctx, customer, f.proteinParams())
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusActive, sub.Status)
	assert.Equal(t, int64(960000), sub.MonthlyEstimate)
	assert.Equal(t, int64(40000), sub.PlanPrice)
	assert.Equal(t, catalog.Protein, sub.PlanName)
	assert.Equal(t, []schedule.MealType{schedule.Lunch, schedule.Dinner}, sub.MealTypes)

	// scenario: second create is rejected
	_, err = f.svc.Create(ctx, customer, f.proteinParams())
	assert.ErrorIs(t, err, subscription.ErrAlreadySubscribed)
	assert.Equal(t, int32(1), f.repo.inserts.Load())

	// scenario: pause twice
	paused, err := f.svc.Pause(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusPaused, paused.Status)
	require.NotNil(t, paused.PausedAt)

	_, err = f.svc.Pause(ctx, customer)
	assert.ErrorIs(t, err, subscription.ErrNoActiveSubscription)

	// scenario: resume twice
	resumed, err := f.svc.Resume(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusActive, resumed.Status)
	require.NotNil(t, resumed.ReactivatedAt)

	_, err = f.svc.Resume(ctx, customer)
	assert.ErrorIs(t, err, subscription.ErrNoPausedSubscription)

	// pause and resume keep every detail
	assert.Equal(t, sub.PlanID, resumed.PlanID)
	assert.Equal(t, sub.MealTypes, resumed.MealTypes)
	assert.Equal(t, sub.DeliveryDays, resumed.DeliveryDays)
	assert.Equal(t, sub.Address, resumed.Address)
	assert.Equal(t, sub.Allergies, resumed.Allergies)
	assert.Equal(t, sub.MonthlyEstimate, resumed.MonthlyEstimate)

	// scenario: cancel then subscribe again
	cancelled, err := f.svc.Cancel(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	_, err = f.svc.Current(ctx, customer)
	assert.ErrorIs(t, err, subscription.ErrNoSubscriptionFound)

	_, err = f.svc.Cancel(ctx, customer)
	assert.ErrorIs(t, err, subscription.ErrNoSubscriptionFound)

	again, err := f.svc.Create(ctx, customer, f.proteinParams())
	require.NoError(t, err)
	assert.NotEqual(t, sub.ID, again.ID)

	// the retained record is still reachable by status
	old, err := f.svc.FindByStatus(ctx, customer, subscription.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, old.ID)

	history, err := f.svc.History(ctx, customer, 0)
	require.NoError(t, err)
	require.Len(t, history, 5)
	actions := make([]subscription.Action, 0, len(history))
	for _, h := range history {
		actions = append(actions, h.Action)
	}
	assert.ElementsMatch(t, []subscription.Action{
		subscription.ActionCreated,
		subscription.ActionPaused,
		subscription.ActionResumed,
		subscription.ActionCancelled,
		subscription.ActionCreated,
	}, actions)

	assert.Equal(t, []catalog.PlanName{catalog.Protein, catalog.Protein}, f.obs.created)
	assert.Equal(t, []subscription.Event{
		subscription.EventPause, subscription.EventResume, subscription.EventCancel,
	}, f.obs.transitions)
}

func TestService_RejectedTransitionsDoNotMutate(t *testing.T) {
	t.Parallel()

	var (
		mu  sync.Mutex
		now = time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)
	)
	tick := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Minute)
		return now
	}

	f := setup(t, subscription.WithClock(tick))
	ctx := context.Background()
	customer := uuid.New()

	_, err := f.svc.Create(ctx, customer, f.proteinParams())
	require.NoError(t, err)
	paused, err := f.svc.Pause(ctx, customer)
	require.NoError(t, err)

	_, err = f.svc.Pause(ctx, customer)
	assert.ErrorIs(t, err, subscription.ErrNoActiveSubscription)

	stored, err := f.svc.FindByStatus(ctx, customer, subscription.StatusPaused)
	require.NoError(t, err)
	assert.Equal(t, paused.UpdatedAt, stored.UpdatedAt)
	require.NotNil(t, stored.PausedAt)
	assert.Equal(t, *paused.PausedAt, *stored.PausedAt)

	cancelled, err := f.svc.Cancel(ctx, customer)
	require.NoError(t, err)

	historyBefore, err := f.svc.History(ctx, customer, 0)
	require.NoError(t, err)

	_, err = f.svc.Pause(ctx, customer)
	assert.ErrorIs(t, err, subscription.ErrNoActiveSubscription)
	_, err = f.svc.Resume(ctx, customer)
	assert.ErrorIs(t, err, subscription.ErrNoPausedSubscription)

	stored, err = f.svc.FindByStatus(ctx, customer, subscription.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusCancelled, stored.Status)
	assert.Equal(t, cancelled.UpdatedAt, stored.UpdatedAt)
	require.NotNil(t, stored.CancelledAt)
	assert.Equal(t, *cancelled.CancelledAt, *stored.CancelledAt)
	assert.Nil(t, stored.ReactivatedAt)

	historyAfter, err := f.svc.History(ctx, customer, 0)
	require.NoError(t, err)
	assert.Len(t, historyAfter, len(historyBefore))
	assert.Equal(t, []subscription.Event{subscription.EventPause, subscription.EventCancel}, f.obs.transitions)
}

func TestService_Create_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*subscription.CreateParams)
		fields []string
	}{
		{
			name:   "empty meal types",
			mutate: func(p *subscription.CreateParams) { p.MealTypes = nil },
			fields: []string{"meal_types"},
		},
		{
			name:   "empty delivery days",
			mutate: func(p *subscription.CreateParams) { p.DeliveryDays = []string{} },
			fields: []string{"delivery_days"},
		},
		{
			name:   "unknown meal type",
			mutate: func(p *subscription.CreateParams) { p.MealTypes = []string{"Brunch"} },
			fields: []string{"meal_types"},
		},
		{
			name:   "duplicate day",
			mutate: func(p *subscription.CreateParams) { p.DeliveryDays = []string{"Monday", "monday"} },
			fields: []string{"delivery_days"},
		},
		{
			name:   "blank address",
			mutate: func(p *subscription.CreateParams) { p.Address = " <b></b>  " },
			fields: []string{"address"},
		},
		{
			name: "everything at once",
			mutate: func(p *subscription.CreateParams) {
				p.MealTypes = nil
				p.DeliveryDays = nil
				p.Address = ""
			},
			fields: []string{"meal_types", "delivery_days", "address"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := setup(t)
			params := f.proteinParams()
			tt.mutate(&params)

			_, err := f.svc.Create(context.Background(), uuid.New(), params)
			require.Error(t, err)
			assert.ErrorIs(t, err, validator.ErrValidationFailed)

			verrs := validator.ExtractValidationErrors(err)
			for _, field := range tt.fields {
				assert.True(t, verrs.Has(field), "expected failure on %s", field)
			}
			assert.Zero(t, f.repo.inserts.Load(), "validation failure must not write")
		})
	}
}

func TestService_Create_Errors(t *testing.T) {
	t.Parallel()

	t.Run("unknown plan", func(t *testing.T) {
		t.Parallel()
		f := setup(t)
		params := f.proteinParams()
		params.PlanID = uuid.New()

		_, err := f.svc.Create(context.Background(), uuid.New(), params)
		assert.ErrorIs(t, err, catalog.ErrPlanNotFound)
		assert.Zero(t, f.repo.inserts.Load())
	})

	t.Run("plan removed before insert", func(t *testing.T) {
		t.Parallel()
		f := setup(t)
		svc := subscription.NewService(planGoneRepo{subscription.NewMemoryRepository()}, f.plans)

		_, err := svc.Create(context.Background(), uuid.New(), f.proteinParams())
		assert.ErrorIs(t, err, catalog.ErrPlanNotFound)
		assert.NotErrorIs(t, err, subscription.ErrPersistence)
	})

	t.Run("anonymous customer", func(t *testing.T) {
		t.Parallel()
		f := setup(t)
		_, err := f.svc.Create(context.Background(), uuid.Nil, f.proteinParams())
		assert.ErrorIs(t, err, subscription.ErrUnauthorized)
	})

	t.Run("sanitises free text", func(t *testing.T) {
		t.Parallel()
		f := setup(t)
		params := f.proteinParams()
		params.Address = "  <script>x</script>Jl. Sudirman\n 1  "
		params.Allergies = "peanuts\t\tshellfish"

		sub, err := f.svc.Create(context.Background(), uuid.New(), params)
		require.NoError(t, err)
		assert.Equal(t, "xJl. Sudirman 1", sub.Address)
		assert.Equal(t, "peanuts shellfish", sub.Allergies)
	})
}

func TestService_PriceSnapshot(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()
	customer := uuid.New()

	sub, err := f.svc.Create(ctx, customer, f.proteinParams())
	require.NoError(t, err)

	f.plans.setPrice(sub.PlanID, 99000)

	current, err := f.svc.Current(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, int64(40000), current.PlanPrice)
	assert.Equal(t, int64(960000), current.MonthlyEstimate)
}

func TestService_CustomerScope(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	_, err := f.svc.Create(ctx, alice, f.proteinParams())
	require.NoError(t, err)

	_, err = f.svc.Pause(ctx, bob)
	assert.ErrorIs(t, err, subscription.ErrNoActiveSubscription)

	_, err = f.svc.Cancel(ctx, bob)
	assert.ErrorIs(t, err, subscription.ErrNoSubscriptionFound)

	current, err := f.svc.Current(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusActive, current.Status)
}

func TestService_Concurrency(t *testing.T) {
	t.Parallel()

	const workers = 16

	t.Run("one create wins", func(t *testing.T) {
		t.Parallel()
		f := setup(t)
		customer := uuid.New()

		var wg sync.WaitGroup
		var ok, rejected atomic.Int32
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.svc.Create(context.Background(), customer, f.proteinParams())
				switch {
				case err == nil:
					ok.Add(1)
				case errors.Is(err, subscription.ErrAlreadySubscribed):
					rejected.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), ok.Load())
		assert.Equal(t, int32(workers-1), rejected.Load())

		n, err := f.repo.CountByStatus(context.Background(), subscription.StatusActive)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("one pause wins", func(t *testing.T) {
		t.Parallel()
		f := setup(t)
		customer := uuid.New()
		_, err := f.svc.Create(context.Background(), customer, f.proteinParams())
		require.NoError(t, err)

		var wg sync.WaitGroup
		var ok, rejected atomic.Int32
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.svc.Pause(context.Background(), customer)
				switch {
				case err == nil:
					ok.Add(1)
				case errors.Is(err, subscription.ErrNoActiveSubscription):
					rejected.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), ok.Load())
		assert.Equal(t, int32(workers-1), rejected.Load())
	})
}

func TestService_CancelDelete(t *testing.T) {
	t.Parallel()

	f := setup(t, subscription.WithCancelPolicy(subscription.CancelDelete))
	ctx := context.Background()
	customer := uuid.New()

	_, err := f.svc.Create(ctx, customer, f.proteinParams())
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, customer)
	require.NoError(t, err)

	_, err = f.svc.FindByStatus(ctx, customer, subscription.StatusCancelled)
	assert.ErrorIs(t, err, subscription.ErrNoSubscriptionFound)

	_, err = f.svc.Create(ctx, customer, f.proteinParams())
	assert.NoError(t, err)
}

func TestService_UpdateDetails(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()
	customer := uuid.New()

	_, err := f.svc.UpdateDetails(ctx, customer, subscription.UpdateParams{})
	assert.ErrorIs(t, err, subscription.ErrNoSubscriptionFound)

	sub, err := f.svc.Create(ctx, customer, f.proteinParams())
	require.NoError(t, err)

	addr := "456 Side Rd"
	updated, err := f.svc.UpdateDetails(ctx, customer, subscription.UpdateParams{Address: &addr})
	require.NoError(t, err)
	assert.Equal(t, addr, updated.Address)
	assert.Equal(t, sub.MealTypes, updated.MealTypes)

	blank := "   "
	_, err = f.svc.UpdateDetails(ctx, customer, subscription.UpdateParams{Address: &blank})
	assert.ErrorIs(t, err, validator.ErrValidationFailed)

	current, err := f.svc.Current(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, addr, current.Address)
}

func TestService_Estimate(t *testing.T) {
	t.Parallel()

	f := setup(t)
	royal := f.plans.byName(catalog.Royal)

	b, err := f.svc.Estimate(context.Background(), royal.ID, []string{"breakfast"}, []string{"Sunday", "Saturday"})
	require.NoError(t, err)
	assert.Equal(t, int64(60000*1*2*4), b.Total)

	_, err = f.svc.Estimate(context.Background(), royal.ID, nil, []string{"Sunday"})
	assert.ErrorIs(t, err, validator.ErrValidationFailed)

	_, err = f.svc.Estimate(context.Background(), uuid.New(), []string{"Lunch"}, []string{"Sunday"})
	assert.ErrorIs(t, err, catalog.ErrPlanNotFound)
}

func TestService_Clock(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	f := setup(t, subscription.WithClock(func() time.Time { return at }))
	customer := uuid.New()

	sub, err := f.svc.Create(context.Background(), customer, f.proteinParams())
	require.NoError(t, err)
	assert.Equal(t, at, sub.CreatedAt)

	paused, err := f.svc.Pause(context.Background(), customer)
	require.NoError(t, err)
	assert.Equal(t, at, *paused.PausedAt)
}

func TestNewService_PanicsOnNil(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { subscription.NewService(nil, newPlanMap()) })
	assert.Panics(t, func() { subscription.NewService(subscription.NewMemoryRepository(), nil) })
}
