package catering

import (
	"net/http"

	"github.com/dmitrymomot/seacatering/handler"
	"github.com/dmitrymomot/seacatering/pkg/binder"
)

func (a *api) featuredTestimonials() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, q limitQuery) handler.Response {
		list, err := a.testimonials.Featured(ctx, q.Limit)
		if err != nil {
			return handler.Error(err)
		}
		return handler.JSON(list, handler.WithJSONMeta(map[string]any{"count": len(list)}))
	}, binder.Query())
}

func (a *api) submitTestimonial() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, req testimonialRequest) handler.Response {
		t, err := a.testimonials.Submit(ctx, customerID(ctx), req.Message, req.Rating)
		if err != nil {
			return handler.Error(err)
		}
		return handler.Created(t)
	}, binder.JSON())
}
