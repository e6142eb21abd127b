package catering

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/seacatering/handler"
	"github.com/dmitrymomot/seacatering/pkg/binder"
	"github.com/dmitrymomot/seacatering/pkg/identity"
	"github.com/dmitrymomot/seacatering/pkg/subscription"
)

// customerID is the authenticated caller. Routes that need one sit behind
// RequireRole; services reject uuid.Nil anyway.
func customerID(ctx context.Context) uuid.UUID {
	id, _ := identity.FromContext(ctx)
	return id.Subject
}

func (a *api) currentSubscription() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, q subscriptionQuery) handler.Response {
		var (
			sub *subscription.Subscription
			err error
		)
		if q.Status != "" {
			sub, err = a.subs.FindByStatus(ctx, customerID(ctx), subscription.Status(q.Status))
		} else {
			sub, err = a.subs.Current(ctx, customerID(ctx))
		}
		if err != nil {
			return handler.Error(err)
		}
		return handler.JSON(sub)
	}, binder.Query())
}

func (a *api) createSubscription() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, req createSubscriptionRequest) handler.Response {
		sub, err := a.subs.Create(ctx, customerID(ctx), subscription.CreateParams{
			PlanID:       req.PlanID,
			MealTypes:    req.MealTypes,
			DeliveryDays: req.DeliveryDays,
			Address:      req.Address,
			Allergies:    req.Allergies,
		})
		if err != nil {
			return handler.Error(err)
		}
		return handler.Created(sub)
	}, binder.JSON())
}

func (a *api) updateSubscription() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, req updateSubscriptionRequest) handler.Response {
		sub, err := a.subs.UpdateDetails(ctx, customerID(ctx), subscription.UpdateParams{
			Address:   req.Address,
			Allergies: req.Allergies,
		})
		if err != nil {
			return handler.Error(err)
		}
		return handler.JSON(sub)
	}, binder.JSON())
}

type transitionFunc func(ctx context.Context, customerID uuid.UUID) (*subscription.Subscription, error)

func (a *api) transition(fn transitionFunc) http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, _ struct{}) handler.Response {
		sub, err := fn(ctx, customerID(ctx))
		if err != nil {
			return handler.Error(err)
		}
		return handler.JSON(sub)
	})
}

func (a *api) pauseSubscription() http.HandlerFunc  { return a.transition(a.subs.Pause) }
func (a *api) resumeSubscription() http.HandlerFunc { return a.transition(a.subs.Resume) }
func (a *api) cancelSubscription() http.HandlerFunc { return a.transition(a.subs.Cancel) }

func (a *api) subscriptionHistory() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, q limitQuery) handler.Response {
		entries, err := a.subs.History(ctx, customerID(ctx), q.Limit)
		if err != nil {
			return handler.Error(err)
		}
		return handler.JSON(entries, handler.WithJSONMeta(map[string]any{"count": len(entries)}))
	}, binder.Query())
}
