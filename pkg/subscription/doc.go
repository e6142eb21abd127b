// Package subscription manages the meal subscription lifecycle of a customer.
//
// A customer holds at most one live subscription, meaning one whose status is
// active or paused. The lifecycle is a small transition table:
//
//	active  --pause-->  paused
//	paused  --resume--> active
//	active  --cancel--> cancelled
//	paused  --cancel--> cancelled
//
// Cancelled is terminal. Cancelled records are kept by default and ignored by
// every live lookup, so a customer can subscribe again right after cancelling.
// WithCancelPolicy(CancelDelete) removes the record instead.
//
// # Transitions
//
// The service never reads a record, checks its status and writes it back.
// It asks the Repository to move the customer's record from the allowed
// source statuses to the target in one conditional write. When two requests
// race, exactly one wins and the other gets the precondition error for its
// event:
//
//	pause  -> ErrNoActiveSubscription
//	resume -> ErrNoPausedSubscription
//	cancel -> ErrNoSubscriptionFound
//
// The repository enforces the one-live-per-customer rule on insert as well,
// so concurrent Create calls for the same customer cannot both succeed.
//
// # Pricing
//
// The plan price is copied onto the subscription at creation together with
// the monthly estimate computed by the pricing package. Later catalog changes
// do not alter existing subscriptions.
//
// # Usage
//
//	repo := subscription.NewMemoryRepository()
//	svc := subscription.NewService(repo, catalogService,
//	    subscription.WithHistory(repo),
//	    subscription.WithLogger(log),
//	)
//
//	sub, err := svc.Create(ctx, customerID, subscription.CreateParams{
//	    PlanID:       planID,
//	    MealTypes:    []string{"Lunch", "Dinner"},
//	    DeliveryDays: []string{"Monday", "Wednesday", "Friday"},
//	    Address:      "Jl. Sudirman 1, Jakarta",
//	})
//
// The mongo and pg packages provide durable Repository implementations.
package subscription
