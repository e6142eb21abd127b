// Package handler adapts typed request handlers to net/http.
//
// Wrap binds the request into a struct with the configured binders, calls
// the HandlerFunc and renders its Response. Responses use one JSON envelope:
//
//	{"data": ..., "meta": {...}}
//	{"error": {"code": "plan_not_found", "message": "...", "request_id": "..."}}
//
// Handlers return Error(err) for failures; the route's ErrorHandler, usually
// ErrorResponder.Handle, maps the error to a status through ErrorMapping
// entries and localises the message with the request's language.
// Validation failures become 422 with per-field messages.
package handler
