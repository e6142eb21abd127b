package i18n

import "net/http"

// LangExtractor picks a language for the request. An empty result means
// "use the default".
type LangExtractor func(r *http.Request) string

// DefaultLangExtractor prefers a supported "lang" query parameter and falls
// back to Accept-Language negotiation.
func DefaultLangExtractor(t *Translator) LangExtractor {
	return func(r *http.Request) string {
		if q := r.URL.Query().Get("lang"); q != "" && len(q) <= 35 && t.Supports(q) {
			return t.normalize(q)
		}
		return t.Match(r.Header.Get("Accept-Language"))
	}
}

// Middleware stores the negotiated language in the request context and
// echoes it in the Content-Language header.
func Middleware(extr LangExtractor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := ""
			if extr != nil {
				lang = extr(r)
			}
			if lang == "" {
				lang = DefaultLanguage
			}

			w.Header().Set("Content-Language", lang)
			next.ServeHTTP(w, r.WithContext(SetLocale(r.Context(), lang)))
		})
	}
}
