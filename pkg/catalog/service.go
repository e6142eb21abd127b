package catalog

import (
	"cmp"
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/seacatering/pkg/logger"
	"github.com/dmitrymomot/seacatering/pkg/rbac"
	"github.com/dmitrymomot/seacatering/pkg/sanitizer"
	"github.com/dmitrymomot/seacatering/pkg/validator"
)

// Service is the plan catalog.
type Service interface {
	// ListPlans returns all plans ordered by price, cheapest first.
	ListPlans(ctx context.Context) ([]Plan, error)
	// GetPlan returns the plan with id or ErrPlanNotFound.
	GetPlan(ctx context.Context, id uuid.UUID) (Plan, error)
	// AddPlan creates a tier. Requires the plans.write permission.
	AddPlan(ctx context.Context, params AddPlanParams) (Plan, error)
	// Seed inserts plans whose names are not taken yet and reports how many
	// were inserted. It performs no authorization and is meant for startup.
	Seed(ctx context.Context, plans ...Plan) (int, error)
}

// AddPlanParams is the administrator input for a new tier.
type AddPlanParams struct {
	Name        string
	Price       int64
	Description string
}

// ServiceOption configures the catalog service.
type ServiceOption func(*service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

type service struct {
	store Store
	authz rbac.Authorizer
	log   *slog.Logger
	now   func() time.Time

	// read-mostly snapshot, nil until first load and after every write
	mu       sync.RWMutex
	snapshot []Plan
	gen      uint64
}

// NewService builds the catalog. Panics when store or authz is nil.
func NewService(store Store, authz rbac.Authorizer, opts ...ServiceOption) Service {
	if store == nil {
		panic("catalog: store is required")
	}
	if authz == nil {
		panic("catalog: authorizer is required")
	}

	s := &service{
		store: store,
		authz: authz,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) ListPlans(ctx context.Context) ([]Plan, error) {
	plans, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(plans), nil
}

func (s *service) GetPlan(ctx context.Context, id uuid.UUID) (Plan, error) {
	if id == uuid.Nil {
		return Plan{}, ErrPlanNotFound
	}

	plans, err := s.load(ctx)
	if err != nil {
		return Plan{}, err
	}
	if i := slices.IndexFunc(plans, func(p Plan) bool { return p.ID == id }); i >= 0 {
		return plans[i], nil
	}

	// The snapshot may predate a plan added by another instance.
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			return Plan{}, ErrPlanNotFound
		}
		return Plan{}, errors.Join(ErrFailedToLoad, err)
	}
	s.invalidate()
	return p, nil
}

func (s *service) AddPlan(ctx context.Context, params AddPlanParams) (Plan, error) {
	if err := s.authz.CanFromContext(ctx, rbac.PermPlansWrite); err != nil {
		return Plan{}, errors.Join(ErrUnauthorized, err)
	}

	name, _ := ParsePlanName(params.Name)
	description := sanitizer.Note(params.Description)
	if err := validator.Apply(
		validator.RequiredString("name", params.Name),
		validator.InList("name", name, PlanNames),
		validator.NumBetween("price", params.Price, MinPrice, MaxPrice),
		validator.MaxLenString("description", description, 500),
	); err != nil {
		return Plan{}, err
	}

	if _, err := s.store.GetByName(ctx, name); err == nil {
		return Plan{}, ErrDuplicatePlan
	} else if !errors.Is(err, ErrPlanNotFound) {
		return Plan{}, errors.Join(ErrFailedToLoad, err)
	}

	now := s.now().UTC()
	plan := Plan{
		ID:          uuid.New(),
		Name:        name,
		Price:       params.Price,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.insert(ctx, plan); err != nil {
		return Plan{}, err
	}

	s.log.InfoContext(ctx, "plan added",
		logger.Component("catalog"),
		logger.Plan(string(plan.Name)),
		slog.Int64("price", plan.Price),
	)
	return plan, nil
}

func (s *service) Seed(ctx context.Context, plans ...Plan) (int, error) {
	inserted := 0
	for _, p := range plans {
		now := s.now().UTC()
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		p.UpdatedAt = now

		err := s.insert(ctx, p)
		switch {
		case err == nil:
			inserted++
		case errors.Is(err, ErrDuplicatePlan):
			continue
		default:
			return inserted, err
		}
	}

	if inserted > 0 {
		s.log.InfoContext(ctx, "catalog seeded", logger.Component("catalog"), slog.Int("inserted", inserted))
	}
	return inserted, nil
}

func (s *service) insert(ctx context.Context, plan Plan) error {
	defer s.invalidate()

	if err := s.store.Insert(ctx, plan); err != nil {
		if errors.Is(err, ErrDuplicatePlan) {
			return ErrDuplicatePlan
		}
		return errors.Join(ErrFailedToSave, err)
	}
	return nil
}

func (s *service) load(ctx context.Context) ([]Plan, error) {
	s.mu.RLock()
	snap, gen := s.snapshot, s.gen
	s.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	plans, err := s.store.List(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoad, err)
	}
	SortByPrice(plans)
	if plans == nil {
		plans = []Plan{}
	}

	s.mu.Lock()
	if s.gen == gen {
		s.snapshot = plans
	}
	s.mu.Unlock()
	return plans, nil
}

func (s *service) invalidate() {
	s.mu.Lock()
	s.snapshot = nil
	s.gen++
	s.mu.Unlock()
}

// SortByPrice orders plans by price ascending, then by name.
func SortByPrice(plans []Plan) {
	slices.SortFunc(plans, func(a, b Plan) int {
		return cmp.Or(cmp.Compare(a.Price, b.Price), strings.Compare(string(a.Name), string(b.Name)))
	})
}
