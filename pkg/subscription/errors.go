package subscription

import "errors"

var (
	// State precondition failures, shown to the customer as guidance.
	ErrAlreadySubscribed    = errors.New("subscription: customer already has a subscription")
	ErrNoActiveSubscription = errors.New("subscription: no active subscription")
	ErrNoPausedSubscription = errors.New("subscription: no paused subscription")
	ErrNoSubscriptionFound  = errors.New("subscription: no subscription found")

	ErrUnauthorized = errors.New("subscription: unauthorized")

	// Repository level errors.
	ErrNotFound    = errors.New("subscription: record not found")
	ErrConflict    = errors.New("subscription: uniqueness conflict")
	ErrPersistence = errors.New("subscription: persistence failure")
)
