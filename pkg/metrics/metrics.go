package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/seacatering/pkg/catalog"
	"github.com/dmitrymomot/seacatering/pkg/subscription"
	"github.com/dmitrymomot/seacatering/pkg/validator"
)

const namespace = "catering"

// Metrics holds the Prometheus collectors of the service.
type Metrics struct {
	gatherer prometheus.Gatherer

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	SubscriptionsCreated *prometheus.CounterVec
	Transitions          *prometheus.CounterVec
	Rejections           *prometheus.CounterVec

	PurgeRuns     *prometheus.CounterVec
	PurgedRecords prometheus.Counter
}

// New registers every collector, plus the Go runtime and process
// collectors, on reg.
func New(reg *prometheus.Registry) *Metrics {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		gatherer: reg,

		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		SubscriptionsCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "subscriptions_created_total",
				Help:      "Subscriptions created, by plan",
			},
			[]string{"plan"},
		),
		Transitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "subscription_transitions_total",
				Help:      "Successful lifecycle transitions",
			},
			[]string{"event", "from", "to"},
		),
		Rejections: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "subscription_rejections_total",
				Help:      "Operations refused by validation or lifecycle rules",
			},
			[]string{"op", "reason"},
		),

		PurgeRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retention_runs_total",
				Help:      "Retention purge runs, by outcome",
			},
			[]string{"outcome"},
		),
		PurgedRecords: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retention_purged_total",
			Help:      "Cancelled subscriptions removed by the retention job",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records request count and latency keyed by the chi route
// pattern, so path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// SubscriptionCreated implements subscription.Observer.
func (m *Metrics) SubscriptionCreated(plan catalog.PlanName) {
	m.SubscriptionsCreated.WithLabelValues(string(plan)).Inc()
}

// SubscriptionTransitioned implements subscription.Observer.
func (m *Metrics) SubscriptionTransitioned(event subscription.Event, from, to subscription.Status) {
	m.Transitions.WithLabelValues(string(event), string(from), string(to)).Inc()
}

// SubscriptionRejected implements subscription.Observer.
func (m *Metrics) SubscriptionRejected(op string, err error) {
	m.Rejections.WithLabelValues(op, reason(err)).Inc()
}

// PurgeCompleted is a retention run hook.
func (m *Metrics) PurgeCompleted(purged int64, err error) {
	if err != nil {
		m.PurgeRuns.WithLabelValues("error").Inc()
		return
	}
	m.PurgeRuns.WithLabelValues("ok").Inc()
	m.PurgedRecords.Add(float64(purged))
}

// reason keeps the label set closed.
func reason(err error) string {
	switch {
	case validator.IsValidationError(err):
		return "validation"
	case errors.Is(err, subscription.ErrAlreadySubscribed):
		return "already_subscribed"
	case errors.Is(err, subscription.ErrNoActiveSubscription):
		return "no_active"
	case errors.Is(err, subscription.ErrNoPausedSubscription):
		return "no_paused"
	case errors.Is(err, subscription.ErrNoSubscriptionFound):
		return "not_found"
	case errors.Is(err, catalog.ErrPlanNotFound):
		return "plan_not_found"
	default:
		return "other"
	}
}

var _ subscription.Observer = (*Metrics)(nil)
