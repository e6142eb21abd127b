package testimonial

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	MinMessageLen = 10
	MaxMessageLen = 1000
	MinRating     = 1
	MaxRating     = 5

	DefaultFeaturedLimit = 6
	MaxFeaturedLimit     = 50
)

// Testimonial is a customer's review of their own subscription.
type Testimonial struct {
	ID             uuid.UUID `json:"id"`
	CustomerID     uuid.UUID `json:"customer_id"`
	SubscriptionID uuid.UUID `json:"subscription_id"`
	Message        string    `json:"message"`
	Rating         int       `json:"rating"`
	Featured       bool      `json:"featured"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store persists testimonials.
type Store interface {
	// Insert returns ErrAlreadySubmitted when the (customer, subscription)
	// pair already has a testimonial.
	Insert(ctx context.Context, t Testimonial) error
	// ListFeatured returns featured testimonials, newest first.
	ListFeatured(ctx context.Context, limit int) ([]Testimonial, error)
}
