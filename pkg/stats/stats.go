package stats

import (
	"context"
	"time"

	"github.com/dmitrymomot/seacatering/pkg/subscription"
)

// Source runs the aggregate queries behind a report. The memory, mongo and
// pg subscription repositories implement it.
type Source interface {
	// CountCreated counts subscriptions with CreatedAt in [from, to].
	CountCreated(ctx context.Context, from, to time.Time) (int64, error)
	// SumPlanPrice sums PlanPrice of subscriptions in status created in [from, to].
	SumPlanPrice(ctx context.Context, status subscription.Status, from, to time.Time) (int64, error)
	// CountByStatus counts subscriptions in status.
	CountByStatus(ctx context.Context, status subscription.Status) (int64, error)
	// SumMonthlyEstimate sums MonthlyEstimate of subscriptions in status.
	SumMonthlyEstimate(ctx context.Context, status subscription.Status) (int64, error)
}

// Cache stores encoded reports. Get returns nil, nil on a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Metric is a figure that may not be available.
type Metric struct {
	Value    int64  `json:"value"`
	Computed bool   `json:"computed"`
	Reason   string `json:"reason,omitempty"`
}

// NotComputed marks a metric the system does not track.
func NotComputed(reason string) Metric {
	return Metric{Reason: reason}
}

// Report is the administrator dashboard for a date range.
type Report struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	// NewSubscriptions counts subscriptions created in range.
	NewSubscriptions int64 `json:"new_subscriptions"`
	// PeriodRevenue sums the plan price of active subscriptions created in
	// range. It is not recurring revenue.
	PeriodRevenue int64 `json:"period_revenue"`
	// TotalActive counts every active subscription, regardless of range.
	TotalActive int64 `json:"total_active"`
	// ActiveMonthlyRevenue sums the monthly estimate over all active subscriptions.
	ActiveMonthlyRevenue int64 `json:"active_monthly_revenue"`
	// Reactivations is reported but never computed.
	Reactivations Metric `json:"reactivations"`

	GeneratedAt time.Time `json:"generated_at"`
	Cached      bool      `json:"cached"`
}
