package subscription

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/seacatering/pkg/catalog"
)

// CancelPolicy decides what happens to a record once it is cancelled.
type CancelPolicy string

const (
	// CancelRetain keeps the record with status cancelled.
	CancelRetain CancelPolicy = "retain"
	// CancelDelete removes the record after the cancel transition succeeds.
	CancelDelete CancelPolicy = "delete"
)

// ParseCancelPolicy maps a config value to a policy. Unknown values fall back to CancelRetain.
func ParseCancelPolicy(s string) CancelPolicy {
	if CancelPolicy(s) == CancelDelete {
		return CancelDelete
	}
	return CancelRetain
}

// Observer receives lifecycle notifications. Implementations must not block.
type Observer interface {
	SubscriptionCreated(plan catalog.PlanName)
	SubscriptionTransitioned(event Event, from, to Status)
	SubscriptionRejected(op string, err error)
}

type noopObserver struct{}

func (noopObserver) SubscriptionCreated(catalog.PlanName)          {}
func (noopObserver) SubscriptionTransitioned(Event, Status, Status) {}
func (noopObserver) SubscriptionRejected(string, error)            {}

// ServiceOption configures the subscription service.
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

// WithCancelPolicy sets what Cancel does with the record. Defaults to CancelRetain.
func WithCancelPolicy(p CancelPolicy) ServiceOption {
	return func(s *service) {
		s.cancelPolicy = p
	}
}

// WithObserver registers a lifecycle observer, e.g. metrics.
func WithObserver(o Observer) ServiceOption {
	return func(s *service) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithHistory enables the lifecycle log. Without it History returns an empty list.
func WithHistory(h HistoryStore) ServiceOption {
	return func(s *service) {
		s.history = h
	}
}

// WithIDGenerator overrides how new ids are minted.
func WithIDGenerator(gen func() uuid.UUID) ServiceOption {
	return func(s *service) {
		if gen != nil {
			s.newID = gen
		}
	}
}
