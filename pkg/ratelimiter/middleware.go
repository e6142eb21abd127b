package ratelimiter

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/seacatering/pkg/logger"
)

// KeyFunc names the bucket for a request. An empty key skips limiting.
type KeyFunc func(r *http.Request) string

// ErrorResponder renders a rejected request.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

type middlewareConfig struct {
	respond ErrorResponder
	log     *slog.Logger
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

// WithErrorResponder replaces the plain text 429 response.
func WithErrorResponder(fn ErrorResponder) MiddlewareOption {
	return func(c *middlewareConfig) {
		if fn != nil {
			c.respond = fn
		}
	}
}

func WithLogger(l *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		if l != nil {
			c.log = l
		}
	}
}

func defaultErrorResponder(w http.ResponseWriter, _ *http.Request, _ error) {
	http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
}

// Middleware throttles requests per key and sets the X-RateLimit headers.
// When the store fails the request is let through and the failure logged:
// an unavailable cache must not block customers.
func Middleware(l *Limiter, key KeyFunc, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	if l == nil || key == nil {
		panic("ratelimiter: limiter and key func are required")
	}
	cfg := middlewareConfig{respond: defaultErrorResponder, log: logger.Discard()}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			res, err := l.Allow(r.Context(), k)
			if err != nil {
				cfg.log.WarnContext(r.Context(), "rate limit check failed, allowing request",
					logger.Component("ratelimiter"),
					logger.Error(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed {
				secs := int(math.Ceil(res.RetryAfter(l.Now()).Seconds()))
				h.Set("Retry-After", strconv.Itoa(max(1, secs)))
				cfg.respond(w, r, ErrLimitExceeded)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
