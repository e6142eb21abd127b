package subscription

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists subscriptions. Every method is scoped by customer id;
// there is deliberately no lookup by subscription id alone.
type Repository interface {
	// FindActiveOrPausedByCustomer returns the customer's live subscription or ErrNotFound.
	FindActiveOrPausedByCustomer(ctx context.Context, customerID uuid.UUID) (*Subscription, error)

	// FindByCustomerAndStatus returns the customer's most recent subscription
	// in status or ErrNotFound.
	FindByCustomerAndStatus(ctx context.Context, customerID uuid.UUID, status Status) (*Subscription, error)

	// Insert stores a new subscription. It returns ErrConflict when the
	// customer already has a live one.
	Insert(ctx context.Context, sub *Subscription) error

	// Update replaces the mutable delivery details (address, allergies) of a
	// live subscription owned by sub.CustomerID. ErrNotFound when none matches.
	Update(ctx context.Context, sub *Subscription) error

	// Transition atomically moves the customer's subscription from any of
	// from to to, stamping the transition timestamp with at. It returns the
	// updated record and its previous status, or ErrNotFound when no
	// subscription is in one of the from statuses.
	Transition(ctx context.Context, customerID uuid.UUID, from []Status, to Status, at time.Time) (*Subscription, Status, error)

	// Delete removes a subscription owned by customerID. ErrNotFound when none matches.
	Delete(ctx context.Context, customerID, subscriptionID uuid.UUID) error
}

// Action is a history entry kind.
type Action string

const (
	ActionCreated   Action = "created"
	ActionPaused    Action = "paused"
	ActionResumed   Action = "resumed"
	ActionCancelled Action = "cancelled"
	ActionUpdated   Action = "updated"
)

func actionFor(e Event) Action {
	switch e {
	case EventPause:
		return ActionPaused
	case EventResume:
		return ActionResumed
	case EventCancel:
		return ActionCancelled
	}
	return Action(e)
}

// HistoryEntry records one lifecycle change.
type HistoryEntry struct {
	ID             uuid.UUID `json:"id"`
	SubscriptionID uuid.UUID `json:"subscription_id"`
	CustomerID     uuid.UUID `json:"customer_id"`
	Action         Action    `json:"action"`
	FromStatus     Status    `json:"from_status,omitempty"`
	ToStatus       Status    `json:"to_status"`
	CreatedAt      time.Time `json:"created_at"`
}

// HistoryStore keeps the append-only lifecycle log.
type HistoryStore interface {
	Append(ctx context.Context, entry HistoryEntry) error
	// ListByCustomer returns entries newest first, at most limit of them.
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]HistoryEntry, error)
}
