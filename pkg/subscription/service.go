package subscription

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/seacatering/pkg/catalog"
	"github.com/dmitrymomot/seacatering/pkg/logger"
	"github.com/dmitrymomot/seacatering/pkg/pricing"
	"github.com/dmitrymomot/seacatering/pkg/sanitizer"
	"github.com/dmitrymomot/seacatering/pkg/schedule"
	"github.com/dmitrymomot/seacatering/pkg/validator"
)

const (
	maxAddressLen   = 500
	maxAllergiesLen = 500

	// DefaultHistoryLimit caps History when the caller passes a non-positive limit.
	DefaultHistoryLimit = 50
)

// Service manages the subscription lifecycle of a single customer at a time.
// Every method takes the acting customer id; none can reach another
// customer's record.
type Service interface {
	Create(ctx context.Context, customerID uuid.UUID, params CreateParams) (*Subscription, error)
	Pause(ctx context.Context, customerID uuid.UUID) (*Subscription, error)
	Resume(ctx context.Context, customerID uuid.UUID) (*Subscription, error)
	Cancel(ctx context.Context, customerID uuid.UUID) (*Subscription, error)

	// Current returns the live subscription or ErrNoSubscriptionFound.
	Current(ctx context.Context, customerID uuid.UUID) (*Subscription, error)
	// FindByStatus returns the most recent subscription in status or ErrNoSubscriptionFound.
	FindByStatus(ctx context.Context, customerID uuid.UUID, status Status) (*Subscription, error)
	// UpdateDetails changes address and allergies of the live subscription.
	UpdateDetails(ctx context.Context, customerID uuid.UUID, params UpdateParams) (*Subscription, error)
	// History lists lifecycle entries newest first.
	History(ctx context.Context, customerID uuid.UUID, limit int) ([]HistoryEntry, error)

	// Estimate prices a schedule against a plan without persisting anything.
	Estimate(ctx context.Context, planID uuid.UUID, mealTypes, deliveryDays []string) (pricing.Breakdown, error)
}

// PlanResolver looks up a plan by id. catalog.Service satisfies it.
type PlanResolver interface {
	GetPlan(ctx context.Context, id uuid.UUID) (catalog.Plan, error)
}

// CreateParams is the customer input for a new subscription.
type CreateParams struct {
	PlanID       uuid.UUID
	MealTypes    []string
	DeliveryDays []string
	Address      string
	Allergies    string
}

// UpdateParams holds the optional detail changes. Nil fields are left as is.
type UpdateParams struct {
	Address   *string
	Allergies *string
}

type service struct {
	repo         Repository
	plans        PlanResolver
	history      HistoryStore
	observer     Observer
	cancelPolicy CancelPolicy
	log          *slog.Logger
	now          func() time.Time
	newID        func() uuid.UUID
}

// NewService builds the subscription service. Panics when repo or plans is nil.
func NewService(repo Repository, plans PlanResolver, opts ...ServiceOption) Service {
	if repo == nil {
		panic("subscription: repository is required")
	}
	if plans == nil {
		panic("subscription: plan resolver is required")
	}

	s := &service{
		repo:         repo,
		plans:        plans,
		observer:     noopObserver{},
		cancelPolicy: CancelRetain,
		log:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:          time.Now,
		newID:        uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("subscription"))

	return s
}

func (s *service) Create(ctx context.Context, customerID uuid.UUID, params CreateParams) (*Subscription, error) {
	if customerID == uuid.Nil {
		return nil, ErrUnauthorized
	}

	address := sanitizer.Address(params.Address)
	allergies := sanitizer.Note(params.Allergies)

	sel, selErr := schedule.Parse(params.MealTypes, params.DeliveryDays)
	if err := validator.Merge(
		selErr,
		validateDetails(address, allergies),
	); err != nil {
		s.observer.SubscriptionRejected("create", err)
		return nil, err
	}

	if _, err := s.repo.FindActiveOrPausedByCustomer(ctx, customerID); err == nil {
		s.observer.SubscriptionRejected("create", ErrAlreadySubscribed)
		return nil, ErrAlreadySubscribed
	} else if !errors.Is(err, ErrNotFound) {
		return nil, errors.Join(ErrPersistence, err)
	}

	plan, err := s.plans.GetPlan(ctx, params.PlanID)
	if err != nil {
		if errors.Is(err, catalog.ErrPlanNotFound) {
			s.observer.SubscriptionRejected("create", err)
			return nil, err
		}
		return nil, errors.Join(ErrPersistence, err)
	}

	now := s.now()
	sub := &Subscription{
		ID:              s.newID(),
		CustomerID:      customerID,
		PlanID:          plan.ID,
		PlanName:        plan.Name,
		PlanPrice:       plan.Price,
		MonthlyEstimate: pricing.EstimateMonthlyCost(plan.Price, sel.MealTypes, sel.DeliveryDays),
		MealTypes:       sel.MealTypes,
		DeliveryDays:    sel.DeliveryDays,
		Address:         address,
		Allergies:       allergies,
		Status:          StatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, sub); err != nil {
		if errors.Is(err, ErrConflict) {
			s.observer.SubscriptionRejected("create", ErrAlreadySubscribed)
			return nil, errors.Join(ErrAlreadySubscribed, err)
		}
		if errors.Is(err, catalog.ErrPlanNotFound) {
			s.observer.SubscriptionRejected("create", err)
			return nil, catalog.ErrPlanNotFound
		}
		return nil, errors.Join(ErrPersistence, err)
	}

	s.record(ctx, sub, ActionCreated, "", StatusActive, now)
	s.observer.SubscriptionCreated(plan.Name)
	s.log.InfoContext(ctx, "subscription created",
		logger.CustomerID(customerID),
		logger.SubscriptionID(sub.ID),
		logger.Plan(string(plan.Name)),
		slog.Int64("monthly_estimate", sub.MonthlyEstimate),
	)

	return sub, nil
}

func (s *service) Pause(ctx context.Context, customerID uuid.UUID) (*Subscription, error) {
	return s.transition(ctx, customerID, EventPause)
}

func (s *service) Resume(ctx context.Context, customerID uuid.UUID) (*Subscription, error) {
	return s.transition(ctx, customerID, EventResume)
}

func (s *service) Cancel(ctx context.Context, customerID uuid.UUID) (*Subscription, error) {
	sub, err := s.transition(ctx, customerID, EventCancel)
	if err != nil {
		return nil, err
	}

	if s.cancelPolicy == CancelDelete {
		// The cancel already took effect; a failed delete leaves a cancelled
		// record behind for the retention job.
		if err := s.repo.Delete(ctx, customerID, sub.ID); err != nil {
			s.log.WarnContext(ctx, "failed to delete cancelled subscription",
				logger.SubscriptionID(sub.ID),
				logger.Error(err),
			)
		}
	}

	return sub, nil
}

func (s *service) transition(ctx context.Context, customerID uuid.UUID, event Event) (*Subscription, error) {
	if customerID == uuid.Nil {
		return nil, ErrUnauthorized
	}

	from, to, err := Lifecycle.Edge(event)
	if err != nil {
		return nil, err
	}

	sub, prev, err := s.repo.Transition(ctx, customerID, from, to, s.now())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			rejected := preconditionError(event)
			s.observer.SubscriptionRejected(string(event), rejected)
			return nil, rejected
		}
		return nil, errors.Join(ErrPersistence, err)
	}

	s.record(ctx, sub, actionFor(event), prev, to, sub.UpdatedAt)
	s.observer.SubscriptionTransitioned(event, prev, to)
	s.log.InfoContext(ctx, "subscription transitioned",
		logger.CustomerID(customerID),
		logger.SubscriptionID(sub.ID),
		logger.Event(string(event)),
		logger.Status(string(prev), string(to)),
	)

	return sub, nil
}

func preconditionError(event Event) error {
	switch event {
	case EventPause:
		return ErrNoActiveSubscription
	case EventResume:
		return ErrNoPausedSubscription
	default:
		return ErrNoSubscriptionFound
	}
}

func (s *service) Current(ctx context.Context, customerID uuid.UUID) (*Subscription, error) {
	if customerID == uuid.Nil {
		return nil, ErrUnauthorized
	}

	sub, err := s.repo.FindActiveOrPausedByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNoSubscriptionFound
		}
		return nil, errors.Join(ErrPersistence, err)
	}
	return sub, nil
}

func (s *service) FindByStatus(ctx context.Context, customerID uuid.UUID, status Status) (*Subscription, error) {
	if customerID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	if err := validator.Apply(
		validator.InList("status", status, []Status{StatusActive, StatusPaused, StatusCancelled}),
	); err != nil {
		return nil, err
	}

	sub, err := s.repo.FindByCustomerAndStatus(ctx, customerID, status)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNoSubscriptionFound
		}
		return nil, errors.Join(ErrPersistence, err)
	}
	return sub, nil
}

func (s *service) UpdateDetails(ctx context.Context, customerID uuid.UUID, params UpdateParams) (*Subscription, error) {
	sub, err := s.Current(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if params.Address != nil {
		sub.Address = sanitizer.Address(*params.Address)
	}
	if params.Allergies != nil {
		sub.Allergies = sanitizer.Note(*params.Allergies)
	}
	if err := validateDetails(sub.Address, sub.Allergies); err != nil {
		return nil, err
	}

	sub.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, sub); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNoSubscriptionFound
		}
		return nil, errors.Join(ErrPersistence, err)
	}

	s.record(ctx, sub, ActionUpdated, sub.Status, sub.Status, sub.UpdatedAt)
	s.log.InfoContext(ctx, "subscription details updated",
		logger.CustomerID(customerID),
		logger.SubscriptionID(sub.ID),
	)

	return sub, nil
}

func (s *service) History(ctx context.Context, customerID uuid.UUID, limit int) ([]HistoryEntry, error) {
	if customerID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	if s.history == nil {
		return []HistoryEntry{}, nil
	}
	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}

	entries, err := s.history.ListByCustomer(ctx, customerID, limit)
	if err != nil {
		return nil, errors.Join(ErrPersistence, err)
	}
	if entries == nil {
		entries = []HistoryEntry{}
	}
	return entries, nil
}

func (s *service) Estimate(ctx context.Context, planID uuid.UUID, mealTypes, deliveryDays []string) (pricing.Breakdown, error) {
	sel, err := schedule.Parse(mealTypes, deliveryDays)
	if err != nil {
		return pricing.Breakdown{}, err
	}

	plan, err := s.plans.GetPlan(ctx, planID)
	if err != nil {
		if errors.Is(err, catalog.ErrPlanNotFound) {
			return pricing.Breakdown{}, err
		}
		return pricing.Breakdown{}, errors.Join(ErrPersistence, err)
	}

	return pricing.Estimate(plan.Price, sel), nil
}

// record appends a history entry. Failures are logged, never returned: the
// lifecycle change has already been committed.
func (s *service) record(ctx context.Context, sub *Subscription, action Action, from, to Status, at time.Time) {
	if s.history == nil {
		return
	}

	entry := HistoryEntry{
		ID:             s.newID(),
		SubscriptionID: sub.ID,
		CustomerID:     sub.CustomerID,
		Action:         action,
		FromStatus:     from,
		ToStatus:       to,
		CreatedAt:      at,
	}
	if err := s.history.Append(ctx, entry); err != nil {
		s.log.WarnContext(ctx, "failed to append subscription history",
			logger.SubscriptionID(sub.ID),
			slog.String("action", string(action)),
			logger.Error(err),
		)
	}
}

func validateDetails(address, allergies string) error {
	return validator.Apply(
		validator.RequiredString("address", address),
		validator.MaxLenString("address", address, maxAddressLen),
		validator.MaxLenString("allergies", allergies, maxAllergiesLen),
	)
}
