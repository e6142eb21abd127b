package catering

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/seacatering/handler"
	"github.com/dmitrymomot/seacatering/pkg/catalog"
	"github.com/dmitrymomot/seacatering/pkg/identity"
	"github.com/dmitrymomot/seacatering/pkg/ratelimiter"
	"github.com/dmitrymomot/seacatering/pkg/rbac"
	"github.com/dmitrymomot/seacatering/pkg/stats"
	"github.com/dmitrymomot/seacatering/pkg/subscription"
	"github.com/dmitrymomot/seacatering/pkg/testimonial"
)

var errRouteNotFound = errors.New("catering: route not found")

// ErrorMappings maps domain errors to HTTP responses. Order matters:
// authorization failures are joined with the package sentinel, so the rbac
// reasons come before the generic unauthorized entries. A missing role is
// reported together with insufficient permissions and must win as 401.
func ErrorMappings() []handler.ErrorMapping {
	return []handler.ErrorMapping{
		{Target: subscription.ErrAlreadySubscribed, Status: http.StatusConflict, Code: "already_subscribed"},
		{Target: subscription.ErrNoActiveSubscription, Status: http.StatusConflict, Code: "no_active_subscription"},
		{Target: subscription.ErrNoPausedSubscription, Status: http.StatusConflict, Code: "no_paused_subscription"},
		{Target: subscription.ErrNoSubscriptionFound, Status: http.StatusNotFound, Code: "no_subscription_found"},
		{Target: subscription.ErrConflict, Status: http.StatusConflict, Code: "conflict"},
		{Target: testimonial.ErrNoSubscriptionFound, Status: http.StatusNotFound, Code: "no_subscription_found"},
		{Target: testimonial.ErrAlreadySubmitted, Status: http.StatusConflict, Code: "already_submitted"},
		{Target: catalog.ErrPlanNotFound, Status: http.StatusNotFound, Code: "plan_not_found"},
		{Target: catalog.ErrDuplicatePlan, Status: http.StatusConflict, Code: "duplicate_plan"},

		{Target: rbac.ErrRoleNotInContext, Status: http.StatusUnauthorized, Code: "unauthorized"},
		{Target: rbac.ErrInsufficientPermissions, Status: http.StatusForbidden, Code: "forbidden"},
		{Target: rbac.ErrInvalidRole, Status: http.StatusForbidden, Code: "forbidden"},
		{Target: identity.ErrForbidden, Status: http.StatusForbidden, Code: "forbidden"},
		{Target: identity.ErrUnauthorized, Status: http.StatusUnauthorized, Code: "unauthorized"},
		{Target: subscription.ErrUnauthorized, Status: http.StatusUnauthorized, Code: "unauthorized"},
		{Target: catalog.ErrUnauthorized, Status: http.StatusUnauthorized, Code: "unauthorized"},
		{Target: stats.ErrUnauthorized, Status: http.StatusUnauthorized, Code: "unauthorized"},
		{Target: testimonial.ErrUnauthorized, Status: http.StatusUnauthorized, Code: "unauthorized"},

		{Target: ratelimiter.ErrLimitExceeded, Status: http.StatusTooManyRequests, Code: "too_many_requests"},
		{Target: errRouteNotFound, Status: http.StatusNotFound, Code: "not_found"},
	}
}
