// Package binder decodes HTTP requests into typed request structs.
//
// Binders have the signature func(*http.Request, any) error and are applied
// in order by handler.Wrap, so one struct can combine sources:
//
//	type updateRequest struct {
//	    PlanID  uuid.UUID `path:"id"`
//	    Lang    string    `query:"lang"`
//	    Address *string   `json:"delivery_address"`
//	}
//
//	handler.Wrap(h, handler.WithBinders[handler.Context, updateRequest](
//	    binder.Path(chi.URLParam),
//	    binder.Query(),
//	    binder.JSON(),
//	))
//
// JSON is strict: unknown fields, trailing data and bodies over
// DefaultMaxJSONSize are rejected. Query and Path only touch fields that
// carry their tag.
package binder
