package catering

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/seacatering/handler"
	"github.com/dmitrymomot/seacatering/pkg/catalog"
	"github.com/dmitrymomot/seacatering/pkg/httpserver"
	"github.com/dmitrymomot/seacatering/pkg/i18n"
	"github.com/dmitrymomot/seacatering/pkg/identity"
	"github.com/dmitrymomot/seacatering/pkg/logger"
	"github.com/dmitrymomot/seacatering/pkg/metrics"
	"github.com/dmitrymomot/seacatering/pkg/ratelimiter"
	"github.com/dmitrymomot/seacatering/pkg/rbac"
	"github.com/dmitrymomot/seacatering/pkg/stats"
	"github.com/dmitrymomot/seacatering/pkg/subscription"
	"github.com/dmitrymomot/seacatering/pkg/testimonial"
)

// RouterOptions carries the services behind the API. Plans, Subscriptions,
// Testimonials, Stats, Verifier and Translator are required.
type RouterOptions struct {
	Plans         catalog.Service
	Subscriptions subscription.Service
	Testimonials  testimonial.Service
	Stats         stats.Service

	Verifier   *identity.Verifier
	Translator *i18n.Translator
	Logger     *slog.Logger

	// Metrics enables request instrumentation and GET /metrics.
	Metrics *metrics.Metrics

	// RateLimiter throttles state changing customer requests when set.
	RateLimiter *ratelimiter.Limiter

	// ReadinessChecks back GET /health/ready.
	ReadinessChecks  []httpserver.Check
	ReadinessTimeout time.Duration
}

type api struct {
	plans        catalog.Service
	subs         subscription.Service
	testimonials testimonial.Service
	stats        stats.Service
	errs         *handler.ErrorResponder
}

// Router builds the HTTP API.
//
//	r := catering.Router(catering.RouterOptions{...})
//	srv.Run(ctx, r)
func Router(opts RouterOptions) chi.Router {
	switch {
	case opts.Plans == nil, opts.Subscriptions == nil, opts.Testimonials == nil, opts.Stats == nil:
		panic("catering: all services are required")
	case opts.Verifier == nil:
		panic("catering: verifier is required")
	case opts.Translator == nil:
		panic("catering: translator is required")
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}

	a := &api{
		plans:        opts.Plans,
		subs:         opts.Subscriptions,
		testimonials: opts.Testimonials,
		stats:        opts.Stats,
		errs:         handler.NewErrorResponder(opts.Translator, opts.Logger, ErrorMappings()...),
	}
	authErr := identity.WithErrorResponder(a.errs.Write)
	customerOnly := identity.RequireRole([]string{rbac.RoleCustomer}, authErr)
	adminOnly := identity.RequireRole([]string{rbac.RoleAdmin}, authErr)
	throttle := func(next http.Handler) http.Handler { return next }
	if opts.RateLimiter != nil {
		throttle = ratelimiter.Middleware(opts.RateLimiter, customerKey,
			ratelimiter.WithErrorResponder(a.errs.Write),
			ratelimiter.WithLogger(opts.Logger),
		)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}

	r.NotFound(a.notFound)

	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(opts.Logger, opts.ReadinessTimeout, opts.ReadinessChecks...))
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(i18n.Middleware(i18n.DefaultLangExtractor(opts.Translator)))
		r.Use(identity.Middleware(opts.Verifier, authErr))

		r.Route("/plans", func(r chi.Router) {
			r.Get("/", a.listPlans())
			r.Get("/{id}", a.getPlan())
			r.With(adminOnly).Post("/", a.addPlan())
		})
		r.Post("/estimate", a.estimate())

		r.Route("/subscription", func(r chi.Router) {
			r.Use(customerOnly)
			r.Get("/", a.currentSubscription())
			r.Get("/history", a.subscriptionHistory())
			r.Group(func(r chi.Router) {
				r.Use(throttle)
				r.Post("/", a.createSubscription())
				r.Patch("/", a.updateSubscription())
				r.Post("/pause", a.pauseSubscription())
				r.Post("/resume", a.resumeSubscription())
				r.Post("/cancel", a.cancelSubscription())
			})
		})

		r.Route("/testimonials", func(r chi.Router) {
			r.Get("/", a.featuredTestimonials())
			r.With(customerOnly, throttle).Post("/", a.submitTestimonial())
		})

		r.With(adminOnly).Get("/admin/stats", a.adminStats())
	})

	return r
}

// wrap applies the shared error handler and binders to a typed handler.
func wrap[R any](a *api, h handler.HandlerFunc[R], binders ...handler.Bind) http.HandlerFunc {
	return handler.Wrap(h,
		handler.WithBinders[R](binders...),
		handler.WithErrorHandler[R](a.errs.Handle),
	)
}

// customerKey buckets requests by the authenticated subject.
func customerKey(r *http.Request) string {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		return ""
	}
	return "customer:" + id.Subject.String()
}

func (a *api) notFound(w http.ResponseWriter, r *http.Request) {
	a.errs.Write(w, r, errRouteNotFound)
}
