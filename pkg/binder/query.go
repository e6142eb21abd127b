package binder

import "net/http"

// Query binds URL query parameters into fields tagged `query:"name"`.
// Supported field types are strings, numbers, bools, time.Time (RFC 3339 or
// YYYY-MM-DD), encoding.TextUnmarshaler implementations, pointers to those
// for optional values, and slices (?day=Monday&day=Friday or ?day=Monday,Friday).
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		q := r.URL.Query()
		return bindToStruct(v, "query", func(name string) []string { return q[name] }, ErrFailedToParseQuery)
	}
}
