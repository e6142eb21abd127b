package pg

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/seacatering/pkg/subscription"
)

// HistoryStore implements subscription.HistoryStore.
type HistoryStore struct {
	pool *pgxpool.Pool
}

func NewHistoryStore(pool *pgxpool.Pool) *HistoryStore {
	return &HistoryStore{pool: pool}
}

func (s *HistoryStore) Append(ctx context.Context, e subscription.HistoryEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO subscription_history (id, subscription_id, customer_id, action, from_status, to_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.SubscriptionID, e.CustomerID, string(e.Action), string(e.FromStatus), string(e.ToStatus), e.CreatedAt,
	)
	return err
}

func (s *HistoryStore) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]subscription.HistoryEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, subscription_id, customer_id, action, from_status, to_status, created_at
		FROM subscription_history
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		customerID, limit,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (subscription.HistoryEntry, error) {
		var (
			e                    subscription.HistoryEntry
			action, fromSt, toSt string
		)
		err := row.Scan(&e.ID, &e.SubscriptionID, &e.CustomerID, &action, &fromSt, &toSt, &e.CreatedAt)
		e.Action = subscription.Action(action)
		e.FromStatus = subscription.Status(fromSt)
		e.ToStatus = subscription.Status(toSt)
		e.CreatedAt = e.CreatedAt.UTC()
		return e, err
	})
}

var _ subscription.HistoryStore = (*HistoryStore)(nil)
