package identity

import (
	"errors"
	"net/http"
	"slices"
	"strings"
)

// ErrorResponder writes an authentication or authorization failure.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

// MiddlewareOption configures Middleware and RequireRole.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	onError ErrorResponder
}

// WithErrorResponder overrides the default plain-text failure response.
func WithErrorResponder(fn ErrorResponder) MiddlewareOption {
	return func(c *middlewareConfig) {
		if fn != nil {
			c.onError = fn
		}
	}
}

func newMiddlewareConfig(opts []MiddlewareOption) middlewareConfig {
	cfg := middlewareConfig{onError: defaultErrorResponder}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func defaultErrorResponder(w http.ResponseWriter, _ *http.Request, err error) {
	status := http.StatusUnauthorized
	if errors.Is(err, ErrForbidden) {
		status = http.StatusForbidden
	}
	http.Error(w, http.StatusText(status), status)
}

// Middleware authenticates requests carrying a bearer token and stores the
// identity in the request context. Requests without a token pass through
// anonymously; RequireRole decides whether a route needs one.
func Middleware(v *Verifier, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	if v == nil {
		panic("identity: verifier is required")
	}
	cfg := newMiddlewareConfig(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r)
			if errors.Is(err, ErrMissingToken) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				cfg.onError(w, r, errors.Join(ErrUnauthorized, err))
				return
			}

			id, err := v.Verify(token)
			if err != nil {
				cfg.onError(w, r, errors.Join(ErrUnauthorized, err))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole rejects anonymous callers with ErrUnauthorized and callers
// with another role with ErrForbidden.
func RequireRole(roles []string, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := newMiddlewareConfig(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := FromContext(r.Context())
			if !ok {
				cfg.onError(w, r, ErrUnauthorized)
				return
			}
			if len(roles) > 0 && !slices.Contains(roles, id.Role) {
				cfg.onError(w, r, ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingToken
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrInvalidToken
	}

	return strings.TrimSpace(token), nil
}
