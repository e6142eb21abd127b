package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/seacatering/pkg/catalog"
	"github.com/dmitrymomot/seacatering/pkg/metrics"
	"github.com/dmitrymomot/seacatering/pkg/subscription"
	"github.com/dmitrymomot/seacatering/pkg/validator"
)

func TestObserver(t *testing.T) {
	t.Parallel()

	m := metrics.New(prometheus.NewRegistry())

	m.SubscriptionCreated(catalog.Royal)
	m.SubscriptionCreated(catalog.Royal)
	m.SubscriptionTransitioned(subscription.EventPause, subscription.StatusActive, subscription.StatusPaused)
	m.SubscriptionRejected("create", subscription.ErrAlreadySubscribed)
	m.SubscriptionRejected("create", validator.Fail("address", "validation.required", "field is required"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SubscriptionsCreated.WithLabelValues("Royal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("pause", "active", "paused")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues("create", "already_subscribed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues("create", "validation")))
}

func TestPurgeCompleted(t *testing.T) {
	t.Parallel()

	m := metrics.New(prometheus.NewRegistry())
	m.PurgeCompleted(3, nil)
	m.PurgeCompleted(0, assert.AnError)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.PurgedRecords))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PurgeRuns.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PurgeRuns.WithLabelValues("error")))
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	m := metrics.New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/plans/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	for range 2 {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plans/abc", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/plans/{id}", "404")))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "catering_http_requests_total"))
}
