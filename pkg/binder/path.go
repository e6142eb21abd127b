package binder

import "net/http"

// Path binds router path parameters into fields tagged `path:"name"`.
// extractor is usually chi.URLParam.
func Path(extractor func(r *http.Request, name string) string) func(r *http.Request, v any) error {
	if extractor == nil {
		panic("binder.Path: nil extractor")
	}
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "path", func(name string) []string {
			if val := extractor(r, name); val != "" {
				return []string{val}
			}
			return nil
		}, ErrFailedToParsePath)
	}
}
