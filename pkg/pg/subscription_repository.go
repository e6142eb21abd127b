package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/seacatering/pkg/catalog"
	"github.com/dmitrymomot/seacatering/pkg/schedule"
	"github.com/dmitrymomot/seacatering/pkg/subscription"
)

const subscriptionColumns = `id, customer_id, plan_id, plan_name, plan_price, monthly_estimate,
	meal_types, delivery_days, address, allergies, status,
	created_at, updated_at, paused_at, reactivated_at, cancelled_at`

const liveStatuses = `('active', 'paused')`

// SubscriptionRepository implements subscription.Repository on PostgreSQL,
// together with the stats and retention queries.
type SubscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool}
}

func (r *SubscriptionRepository) FindActiveOrPausedByCustomer(ctx context.Context, customerID uuid.UUID) (*subscription.Subscription, error) {
	return r.one(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions
		WHERE customer_id = $1 AND status IN `+liveStatuses+`
		ORDER BY created_at DESC LIMIT 1`,
		customerID,
	)
}

func (r *SubscriptionRepository) FindByCustomerAndStatus(ctx context.Context, customerID uuid.UUID, status subscription.Status) (*subscription.Subscription, error) {
	return r.one(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions
		WHERE customer_id = $1 AND status = $2
		ORDER BY created_at DESC LIMIT 1`,
		customerID, string(status),
	)
}

func (r *SubscriptionRepository) Insert(ctx context.Context, s *subscription.Subscription) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO subscriptions (`+subscriptionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		s.ID, s.CustomerID, s.PlanID, string(s.PlanName), s.PlanPrice, s.MonthlyEstimate,
		stringsOf(s.MealTypes), stringsOf(s.DeliveryDays), s.Address, s.Allergies, string(s.Status),
		s.CreatedAt, s.UpdatedAt, s.PausedAt, s.ReactivatedAt, s.CancelledAt,
	)
	switch {
	case IsDuplicateKeyError(err):
		return subscription.ErrConflict
	case IsForeignKeyViolationError(err):
		// plan removed between lookup and insert
		return catalog.ErrPlanNotFound
	}
	return err
}

func (r *SubscriptionRepository) Update(ctx context.Context, s *subscription.Subscription) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE subscriptions SET address = $3, allergies = $4, updated_at = $5
		WHERE id = $1 AND customer_id = $2 AND status IN `+liveStatuses,
		s.ID, s.CustomerID, s.Address, s.Allergies, s.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return subscription.ErrNotFound
	}
	return nil
}

// Transition locks the matching row in a CTE and updates it in the same
// statement. A concurrent caller blocks on the row lock, re-evaluates the
// status predicate and finds nothing.
func (r *SubscriptionRepository) Transition(ctx context.Context, customerID uuid.UUID, from []subscription.Status, to subscription.Status, at time.Time) (*subscription.Subscription, subscription.Status, error) {
	stamp := ""
	if field := subscription.TimestampField(to); field != "" {
		stamp = fmt.Sprintf(", %s = $4", field)
	}

	query := `WITH prev AS (
		SELECT id, status FROM subscriptions
		WHERE customer_id = $1 AND status = ANY($2)
		ORDER BY created_at DESC
		LIMIT 1
		FOR UPDATE
	)
	UPDATE subscriptions s
	SET status = $3, updated_at = $4` + stamp + `
	FROM prev
	WHERE s.id = prev.id
	RETURNING prev.status, ` + prefixed("s.", subscriptionColumns)

	rows, err := r.pool.Query(ctx, query, customerID, stringsOf(from), string(to), at)
	if err != nil {
		return nil, "", err
	}

	type result struct {
		prev string
		sub  *subscription.Subscription
	}
	res, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (result, error) {
		var prev string
		sub, err := scanSubscription(row, &prev)
		return result{prev: prev, sub: sub}, err
	})
	if err != nil {
		if IsNotFoundError(err) {
			return nil, "", subscription.ErrNotFound
		}
		if IsDuplicateKeyError(err) {
			return nil, "", subscription.ErrConflict
		}
		return nil, "", err
	}
	return res.sub, subscription.Status(res.prev), nil
}

func (r *SubscriptionRepository) Delete(ctx context.Context, customerID, subscriptionID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM subscriptions WHERE id = $1 AND customer_id = $2`,
		subscriptionID, customerID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return subscription.ErrNotFound
	}
	return nil
}

func (r *SubscriptionRepository) CountCreated(ctx context.Context, from, to time.Time) (int64, error) {
	return r.scalar(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE created_at BETWEEN $1 AND $2`,
		from, to,
	)
}

func (r *SubscriptionRepository) SumPlanPrice(ctx context.Context, status subscription.Status, from, to time.Time) (int64, error) {
	return r.scalar(ctx,
		`SELECT COALESCE(SUM(plan_price), 0)::BIGINT FROM subscriptions
		WHERE status = $1 AND created_at BETWEEN $2 AND $3`,
		string(status), from, to,
	)
}

func (r *SubscriptionRepository) CountByStatus(ctx context.Context, status subscription.Status) (int64, error) {
	return r.scalar(ctx, `SELECT COUNT(*) FROM subscriptions WHERE status = $1`, string(status))
}

func (r *SubscriptionRepository) SumMonthlyEstimate(ctx context.Context, status subscription.Status) (int64, error) {
	return r.scalar(ctx,
		`SELECT COALESCE(SUM(monthly_estimate), 0)::BIGINT FROM subscriptions WHERE status = $1`,
		string(status),
	)
}

// PurgeCancelled implements retention.Target.
func (r *SubscriptionRepository) PurgeCancelled(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM subscriptions WHERE status = 'cancelled' AND cancelled_at < $1`,
		before,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *SubscriptionRepository) scalar(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}

func (r *SubscriptionRepository) one(ctx context.Context, query string, args ...any) (*subscription.Subscription, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	sub, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (*subscription.Subscription, error) {
		return scanSubscription(row)
	})
	if IsNotFoundError(err) {
		return nil, subscription.ErrNotFound
	}
	return sub, err
}

// scanSubscription reads subscriptionColumns, preceded by any extra destinations.
func scanSubscription(row pgx.Row, extra ...any) (*subscription.Subscription, error) {
	var (
		s                 subscription.Subscription
		planName, status string
		mealTypes, days  []string
	)
	dest := append(extra,
		&s.ID, &s.CustomerID, &s.PlanID, &planName, &s.PlanPrice, &s.MonthlyEstimate,
		&mealTypes, &days, &s.Address, &s.Allergies, &status,
		&s.CreatedAt, &s.UpdatedAt, &s.PausedAt, &s.ReactivatedAt, &s.CancelledAt,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	s.PlanName = catalog.PlanName(planName)
	s.Status = subscription.Status(status)
	s.MealTypes = typedOf[schedule.MealType](mealTypes)
	s.DeliveryDays = typedOf[schedule.DeliveryDay](days)
	s.CreatedAt, s.UpdatedAt = s.CreatedAt.UTC(), s.UpdatedAt.UTC()
	s.PausedAt, s.ReactivatedAt, s.CancelledAt = utc(s.PausedAt), utc(s.ReactivatedAt), utc(s.CancelledAt)
	return &s, nil
}

var _ subscription.Repository = (*SubscriptionRepository)(nil)
