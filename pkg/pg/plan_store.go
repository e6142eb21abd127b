package pg

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/seacatering/pkg/catalog"
)

const planColumns = `id, name, price, description, created_at, updated_at`

// PlanStore implements catalog.Store.
type PlanStore struct {
	pool *pgxpool.Pool
}

func NewPlanStore(pool *pgxpool.Pool) *PlanStore {
	return &PlanStore{pool: pool}
}

func (s *PlanStore) List(ctx context.Context) ([]catalog.Plan, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+planColumns+` FROM plans ORDER BY price, name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanPlan)
}

func (s *PlanStore) GetByID(ctx context.Context, id uuid.UUID) (catalog.Plan, error) {
	return s.one(ctx, `SELECT `+planColumns+` FROM plans WHERE id = $1`, id)
}

func (s *PlanStore) GetByName(ctx context.Context, name catalog.PlanName) (catalog.Plan, error) {
	return s.one(ctx, `SELECT `+planColumns+` FROM plans WHERE name = $1`, string(name))
}

func (s *PlanStore) Insert(ctx context.Context, p catalog.Plan) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO plans (`+planColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, string(p.Name), p.Price, p.Description, p.CreatedAt, p.UpdatedAt,
	)
	if IsDuplicateKeyError(err) {
		return catalog.ErrDuplicatePlan
	}
	return err
}

func (s *PlanStore) one(ctx context.Context, query string, arg any) (catalog.Plan, error) {
	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return catalog.Plan{}, err
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanPlan)
	if IsNotFoundError(err) {
		return catalog.Plan{}, catalog.ErrPlanNotFound
	}
	return p, err
}

func scanPlan(row pgx.CollectableRow) (catalog.Plan, error) {
	var (
		p    catalog.Plan
		name string
	)
	err := row.Scan(&p.ID, &name, &p.Price, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	p.Name = catalog.PlanName(name)
	p.CreatedAt, p.UpdatedAt = p.CreatedAt.UTC(), p.UpdatedAt.UTC()
	return p, err
}

var _ catalog.Store = (*PlanStore)(nil)
