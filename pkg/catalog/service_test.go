package catalog_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/seacatering/pkg/catalog"
	"github.com/dmitrymomot/seacatering/pkg/rbac"
	"github.com/dmitrymomot/seacatering/pkg/validator"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) List(ctx context.Context) ([]catalog.Plan, error) {
	args := m.Called(ctx)
	plans, _ := args.Get(0).([]catalog.Plan)
	return plans, args.Error(1)
}

func (m *mockStore) GetByID(ctx context.Context, id uuid.UUID) (catalog.Plan, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(catalog.Plan), args.Error(1)
}

func (m *mockStore) GetByName(ctx context.Context, name catalog.PlanName) (catalog.Plan, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(catalog.Plan), args.Error(1)
}

func (m *mockStore) Insert(ctx context.Context, plan catalog.Plan) error {
	return m.Called(ctx, plan).Error(0)
}

func newAuthorizer(t *testing.T) rbac.Authorizer {
	t.Helper()
	authz, err := rbac.NewAuthorizer(context.Background(), rbac.NewInMemRoleSource(rbac.DefaultRoles()))
	require.NoError(t, err)
	return authz
}

func adminCtx() context.Context {
	return rbac.WithRole(context.Background(), rbac.RoleAdmin)
}

func seeded(t *testing.T) catalog.Service {
	t.Helper()
	svc := catalog.NewService(catalog.NewMemoryStore(), newAuthorizer(t))
	n, err := svc.Seed(context.Background(), catalog.DefaultPlans()...)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	return svc
}

func TestService_ListPlans(t *testing.T) {
	t.Parallel()

	svc := seeded(t)
	plans, err := svc.ListPlans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 3)

	assert.Equal(t, catalog.Diet, plans[0].Name)
	assert.Equal(t, catalog.Protein, plans[1].Name)
	assert.Equal(t, catalog.Royal, plans[2].Name)
	assert.Equal(t, int64(40000), plans[1].Price)

	plans[0].Price = 1
	again, err := svc.ListPlans(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(30000), again[0].Price, "callers must not mutate the snapshot")
}

func TestService_GetPlan(t *testing.T) {
	t.Parallel()

	svc := seeded(t)
	plans, err := svc.ListPlans(context.Background())
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		p, err := svc.GetPlan(context.Background(), plans[2].ID)
		require.NoError(t, err)
		assert.Equal(t, catalog.Royal, p.Name)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.GetPlan(context.Background(), uuid.New())
		assert.ErrorIs(t, err, catalog.ErrPlanNotFound)
	})

	t.Run("nil id", func(t *testing.T) {
		_, err := svc.GetPlan(context.Background(), uuid.Nil)
		assert.ErrorIs(t, err, catalog.ErrPlanNotFound)
	})
}

func TestService_AddPlan(t *testing.T) {
	t.Parallel()

	t.Run("admin adds a tier", func(t *testing.T) {
		t.Parallel()
		svc := catalog.NewService(catalog.NewMemoryStore(), newAuthorizer(t))

		p, err := svc.AddPlan(adminCtx(), catalog.AddPlanParams{Name: "royal", Price: 65000})
		require.NoError(t, err)
		assert.Equal(t, catalog.Royal, p.Name)
		assert.NotEqual(t, uuid.Nil, p.ID)

		plans, err := svc.ListPlans(context.Background())
		require.NoError(t, err)
		assert.Len(t, plans, 1, "snapshot is refreshed after a write")
	})

	t.Run("duplicate name", func(t *testing.T) {
		t.Parallel()
		svc := seeded(t)
		_, err := svc.AddPlan(adminCtx(), catalog.AddPlanParams{Name: "Diet", Price: 5000})
		assert.ErrorIs(t, err, catalog.ErrDuplicatePlan)
	})

	t.Run("price below minimum", func(t *testing.T) {
		t.Parallel()
		svc := catalog.NewService(catalog.NewMemoryStore(), newAuthorizer(t))
		_, err := svc.AddPlan(adminCtx(), catalog.AddPlanParams{Name: "Diet", Price: 999})
		verrs := validator.ExtractValidationErrors(err)
		require.NotNil(t, verrs)
		assert.True(t, verrs.Has("price"))
	})

	t.Run("price above ceiling", func(t *testing.T) {
		t.Parallel()
		svc := catalog.NewService(catalog.NewMemoryStore(), newAuthorizer(t))
		_, err := svc.AddPlan(adminCtx(), catalog.AddPlanParams{Name: "Royal", Price: math.MaxInt64 / 20})
		verrs := validator.ExtractValidationErrors(err)
		require.NotNil(t, verrs)
		assert.True(t, verrs.Has("price"))

		p, err := svc.AddPlan(adminCtx(), catalog.AddPlanParams{Name: "Royal", Price: catalog.MaxPrice})
		require.NoError(t, err)
		assert.Equal(t, catalog.MaxPrice, p.Price)
	})

	t.Run("name outside enumeration", func(t *testing.T) {
		t.Parallel()
		svc := catalog.NewService(catalog.NewMemoryStore(), newAuthorizer(t))
		_, err := svc.AddPlan(adminCtx(), catalog.AddPlanParams{Name: "Vegan", Price: 5000})
		verrs := validator.ExtractValidationErrors(err)
		require.NotNil(t, verrs)
		assert.True(t, verrs.Has("name"))
	})

	t.Run("customer is not allowed", func(t *testing.T) {
		t.Parallel()
		svc := catalog.NewService(catalog.NewMemoryStore(), newAuthorizer(t))
		ctx := rbac.WithRole(context.Background(), rbac.RoleCustomer)
		_, err := svc.AddPlan(ctx, catalog.AddPlanParams{Name: "Diet", Price: 5000})
		assert.ErrorIs(t, err, catalog.ErrUnauthorized)
	})

	t.Run("anonymous is not allowed", func(t *testing.T) {
		t.Parallel()
		svc := catalog.NewService(catalog.NewMemoryStore(), newAuthorizer(t))
		_, err := svc.AddPlan(context.Background(), catalog.AddPlanParams{Name: "Diet", Price: 5000})
		assert.ErrorIs(t, err, catalog.ErrUnauthorized)
	})

	t.Run("storage failure", func(t *testing.T) {
		t.Parallel()
		store := &mockStore{}
		boom := errors.New("connection reset")
		store.On("GetByName", mock.Anything, catalog.Protein).Return(catalog.Plan{}, catalog.ErrPlanNotFound)
		store.On("Insert", mock.Anything, mock.AnythingOfType("catalog.Plan")).Return(boom)

		svc := catalog.NewService(store, newAuthorizer(t))
		_, err := svc.AddPlan(adminCtx(), catalog.AddPlanParams{Name: "Protein", Price: 40000})
		assert.ErrorIs(t, err, catalog.ErrFailedToSave)
		assert.ErrorIs(t, err, boom)
		store.AssertExpectations(t)
	})
}

func TestService_Seed(t *testing.T) {
	t.Parallel()

	svc := seeded(t)
	n, err := svc.Seed(context.Background(), catalog.DefaultPlans()...)
	require.NoError(t, err)
	assert.Zero(t, n, "seeding is idempotent")
}

func TestParsePlanName(t *testing.T) {
	t.Parallel()

	n, ok := catalog.ParsePlanName(" protein ")
	assert.True(t, ok)
	assert.Equal(t, catalog.Protein, n)

	_, ok = catalog.ParsePlanName("keto")
	assert.False(t, ok)
}

func TestNewService_PanicsWithoutDeps(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { catalog.NewService(nil, newAuthorizer(t)) })
	assert.Panics(t, func() { catalog.NewService(catalog.NewMemoryStore(), nil) })
}
