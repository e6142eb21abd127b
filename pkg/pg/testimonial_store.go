package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/seacatering/pkg/testimonial"
)

// TestimonialStore implements testimonial.Store.
type TestimonialStore struct {
	pool *pgxpool.Pool
}

func NewTestimonialStore(pool *pgxpool.Pool) *TestimonialStore {
	return &TestimonialStore{pool: pool}
}

func (s *TestimonialStore) Insert(ctx context.Context, t testimonial.Testimonial) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO testimonials (id, customer_id, subscription_id, message, rating, featured, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.CustomerID, t.SubscriptionID, t.Message, t.Rating, t.Featured, t.CreatedAt,
	)
	if IsDuplicateKeyError(err) {
		return testimonial.ErrAlreadySubmitted
	}
	return err
}

func (s *TestimonialStore) ListFeatured(ctx context.Context, limit int) ([]testimonial.Testimonial, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, customer_id, subscription_id, message, rating, featured, created_at
		FROM testimonials
		WHERE featured
		ORDER BY created_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (testimonial.Testimonial, error) {
		var t testimonial.Testimonial
		err := row.Scan(&t.ID, &t.CustomerID, &t.SubscriptionID, &t.Message, &t.Rating, &t.Featured, &t.CreatedAt)
		t.CreatedAt = t.CreatedAt.UTC()
		return t, err
	})
}

var _ testimonial.Store = (*TestimonialStore)(nil)
