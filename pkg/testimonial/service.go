package testimonial

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/seacatering/pkg/logger"
	"github.com/dmitrymomot/seacatering/pkg/sanitizer"
	"github.com/dmitrymomot/seacatering/pkg/subscription"
	"github.com/dmitrymomot/seacatering/pkg/validator"
)

// Service accepts and lists testimonials.
type Service interface {
	// Submit records a testimonial for the customer's live subscription.
	Submit(ctx context.Context, customerID uuid.UUID, message string, rating int) (Testimonial, error)
	// Featured returns up to limit featured testimonials, newest first.
	// Limits outside 1..MaxFeaturedLimit fall back to DefaultFeaturedLimit.
	Featured(ctx context.Context, limit int) ([]Testimonial, error)
}

// SubscriptionFinder resolves the subscription being reviewed.
// subscription.Service satisfies it.
type SubscriptionFinder interface {
	Current(ctx context.Context, customerID uuid.UUID) (*subscription.Subscription, error)
}

// ServiceOption configures the testimonial service.
type ServiceOption func(*service)

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

type service struct {
	store Store
	subs  SubscriptionFinder
	log   *slog.Logger
	now   func() time.Time
}

// NewService panics when store or subs is nil.
func NewService(store Store, subs SubscriptionFinder, opts ...ServiceOption) Service {
	if store == nil {
		panic("testimonial: store is required")
	}
	if subs == nil {
		panic("testimonial: subscription finder is required")
	}

	s := &service{
		store: store,
		subs:  subs,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("testimonial"))

	return s
}

func (s *service) Submit(ctx context.Context, customerID uuid.UUID, message string, rating int) (Testimonial, error) {
	if customerID == uuid.Nil {
		return Testimonial{}, ErrUnauthorized
	}

	message = sanitizer.Note(message)
	if err := validator.Apply(
		validator.MinLenString("message", message, MinMessageLen),
		validator.MaxLenString("message", message, MaxMessageLen),
		validator.NumBetween("rating", rating, MinRating, MaxRating),
	); err != nil {
		return Testimonial{}, err
	}

	sub, err := s.subs.Current(ctx, customerID)
	if err != nil {
		if errors.Is(err, subscription.ErrNoSubscriptionFound) {
			return Testimonial{}, ErrNoSubscriptionFound
		}
		return Testimonial{}, errors.Join(ErrFailedToLoad, err)
	}

	t := Testimonial{
		ID:             uuid.New(),
		CustomerID:     customerID,
		SubscriptionID: sub.ID,
		Message:        message,
		Rating:         rating,
		Featured:       true,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.store.Insert(ctx, t); err != nil {
		if errors.Is(err, ErrAlreadySubmitted) {
			return Testimonial{}, ErrAlreadySubmitted
		}
		return Testimonial{}, errors.Join(ErrFailedToSave, err)
	}

	s.log.InfoContext(ctx, "testimonial submitted",
		logger.CustomerID(customerID),
		logger.SubscriptionID(sub.ID),
		slog.Int("rating", rating),
	)
	return t, nil
}

func (s *service) Featured(ctx context.Context, limit int) ([]Testimonial, error) {
	if limit < 1 || limit > MaxFeaturedLimit {
		limit = DefaultFeaturedLimit
	}

	items, err := s.store.ListFeatured(ctx, limit)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoad, err)
	}
	if items == nil {
		items = []Testimonial{}
	}
	return items, nil
}
