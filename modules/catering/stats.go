package catering

import (
	"net/http"
	"time"

	"github.com/dmitrymomot/seacatering/handler"
	"github.com/dmitrymomot/seacatering/pkg/binder"
)

func (a *api) adminStats() http.HandlerFunc {
	return wrap(a, func(ctx handler.Context, q statsQuery) handler.Response {
		report, err := a.stats.AdminStats(ctx, q.From, endOfDay(q.To))
		if err != nil {
			return handler.Error(err)
		}
		return handler.JSON(report)
	}, binder.Query())
}

// endOfDay widens a date-only upper bound (midnight UTC) to cover the whole
// day, so ?to=2025-01-31 includes subscriptions created on the 31st.
func endOfDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	if u := t.UTC(); u.Equal(u.Truncate(24 * time.Hour)) {
		return u.Add(24*time.Hour - time.Nanosecond)
	}
	return t
}
