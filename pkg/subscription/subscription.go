package subscription

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/seacatering/pkg/catalog"
	"github.com/dmitrymomot/seacatering/pkg/schedule"
	"github.com/dmitrymomot/seacatering/pkg/statemachine"
)

// Status is the lifecycle state of a subscription.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCancelled Status = "cancelled"
)

// Live reports whether the status counts towards the one-per-customer rule.
func (s Status) Live() bool {
	return s == StatusActive || s == StatusPaused
}

// LiveStatuses are the statuses a customer can have at most one of.
var LiveStatuses = []Status{StatusActive, StatusPaused}

// Event triggers a lifecycle transition.
type Event string

const (
	EventPause  Event = "pause"
	EventResume Event = "resume"
	EventCancel Event = "cancel"
)

// Lifecycle is the transition table shared by the service and repositories.
var Lifecycle = statemachine.MustNew(
	statemachine.On[Status, Event](EventPause).From(StatusActive).To(StatusPaused),
	statemachine.On[Status, Event](EventResume).From(StatusPaused).To(StatusActive),
	statemachine.On[Status, Event](EventCancel).From(StatusActive, StatusPaused).To(StatusCancelled),
)

// Subscription is a customer's enrollment in one plan with a delivery schedule.
type Subscription struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`

	PlanID    uuid.UUID        `json:"plan_id"`
	PlanName  catalog.PlanName `json:"plan_name"`
	PlanPrice int64            `json:"plan_price"`

	// MonthlyEstimate is computed once at creation from PlanPrice and the schedule.
	MonthlyEstimate int64 `json:"monthly_estimate"`

	MealTypes    []schedule.MealType    `json:"meal_types"`
	DeliveryDays []schedule.DeliveryDay `json:"delivery_days"`
	Address      string                 `json:"address"`
	Allergies    string                 `json:"allergies,omitempty"`

	Status        Status     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	PausedAt      *time.Time `json:"paused_at,omitempty"`
	ReactivatedAt *time.Time `json:"reactivated_at,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
}

func (s *Subscription) IsActive() bool    { return s.Status == StatusActive }
func (s *Subscription) IsPaused() bool    { return s.Status == StatusPaused }
func (s *Subscription) IsCancelled() bool { return s.Status == StatusCancelled }

// Apply moves s to status to at the given instant and stamps the matching
// transition timestamp. Repositories use it so every backend records the
// same fields.
func (s *Subscription) Apply(to Status, at time.Time) {
	from := s.Status
	s.Status = to
	s.UpdatedAt = at

	switch {
	case to == StatusPaused:
		s.PausedAt = &at
	case to == StatusActive && from == StatusPaused:
		s.ReactivatedAt = &at
	case to == StatusCancelled:
		s.CancelledAt = &at
	}
}

// TimestampField names the transition timestamp written when moving to
// status to, or "" when none is. Storage backends map it to their column.
func TimestampField(to Status) string {
	switch to {
	case StatusPaused:
		return "paused_at"
	case StatusActive:
		return "reactivated_at"
	case StatusCancelled:
		return "cancelled_at"
	}
	return ""
}

// Clone returns a deep copy.
func (s *Subscription) Clone() *Subscription {
	if s == nil {
		return nil
	}
	c := *s
	c.MealTypes = slices.Clone(s.MealTypes)
	c.DeliveryDays = slices.Clone(s.DeliveryDays)
	c.PausedAt = cloneTime(s.PausedAt)
	c.ReactivatedAt = cloneTime(s.ReactivatedAt)
	c.CancelledAt = cloneTime(s.CancelledAt)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
