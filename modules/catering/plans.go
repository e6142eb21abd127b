package catering

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/seacatering/handler"
	"github.com/dmitrymomot/seacatering/pkg/binder"
	"github.com/dmitrymomot/seacatering/pkg/catalog"
)

func (a *api) listPlans() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, _ struct{}) handler.Response {
		plans, err := a.plans.ListPlans(ctx)
		if err != nil {
			return handler.Error(err)
		}
		return handler.JSON(plans, handler.WithJSONMeta(map[string]any{"count": len(plans)}))
	})
}

func (a *api) getPlan() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, req planPath) handler.Response {
		plan, err := a.plans.GetPlan(ctx, req.ID)
		if err != nil {
			return handler.Error(err)
		}
		return handler.JSON(plan)
	}, binder.Path(chi.URLParam))
}

func (a *api) addPlan() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, req addPlanRequest) handler.Response {
		plan, err := a.plans.AddPlan(ctx, catalog.AddPlanParams{
			Name:        req.Name,
			Price:       req.Price,
			Description: req.Description,
		})
		if err != nil {
			return handler.Error(err)
		}
		return handler.Created(plan)
	}, binder.JSON())
}

func (a *api) estimate() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, req estimateRequest) handler.Response {
		breakdown, err := a.subs.Estimate(ctx, req.PlanID, req.MealTypes, req.DeliveryDays)
		if err != nil {
			return handler.Error(err)
		}
		return handler.JSON(breakdown)
	}, binder.JSON())
}
