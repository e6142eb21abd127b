package handler

import (
	"encoding/json"
	"net/http"
)

// JSONResponse is the envelope every API response uses.
type JSONResponse struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail describes a failed request. Details maps field names to
// localised validation messages.
type ErrorDetail struct {
	Code      string              `json:"code"`
	Message   string              `json:"message"`
	Details   map[string][]string `json:"details,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
}

type jsonResponse struct {
	status int
	body   JSONResponse
}

func (j jsonResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

type JSONOption func(*jsonResponse)

func WithJSONStatus(status int) JSONOption {
	return func(r *jsonResponse) { r.status = status }
}

func WithJSONMeta(meta map[string]any) JSONOption {
	return func(r *jsonResponse) { r.body.Meta = meta }
}

// JSON wraps v in the data envelope with status 200 unless overridden.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK, body: JSONResponse{Data: v}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Created is JSON with status 201.
func Created(v any) Response {
	return JSON(v, WithJSONStatus(http.StatusCreated))
}

// JSONError renders detail with status. Use Error to let the configured
// ErrorHandler classify an error instead.
func JSONError(status int, detail *ErrorDetail) Response {
	return &jsonResponse{status: status, body: JSONResponse{Error: detail}}
}

type errorResponse struct{ err error }

// Error hands err to the ErrorHandler configured for the route.
func Error(err error) Response {
	return errorResponse{err: err}
}

// Render is only reached when the response is used outside Wrap.
func (e errorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return JSONError(http.StatusInternalServerError, &ErrorDetail{
		Code:    "internal",
		Message: http.StatusText(http.StatusInternalServerError),
	}).Render(w, r)
}
