package testimonial_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/seacatering/pkg/subscription"
	"github.com/dmitrymomot/seacatering/pkg/testimonial"
	"github.com/dmitrymomot/seacatering/pkg/validator"
)

type subsByCustomer map[uuid.UUID]*subscription.Subscription

func (m subsByCustomer) Current(_ context.Context, customerID uuid.UUID) (*subscription.Subscription, error) {
	if s, ok := m[customerID]; ok {
		return s, nil
	}
	return nil, subscription.ErrNoSubscriptionFound
}

func withSubscription(customerID uuid.UUID) subsByCustomer {
	return subsByCustomer{customerID: {ID: uuid.New(), CustomerID: customerID, Status: subscription.StatusActive}}
}

func TestSubmit(t *testing.T) {
	t.Parallel()

	customer := uuid.New()
	subs := withSubscription(customer)
	svc := testimonial.NewService(testimonial.NewMemoryStore(), subs)
	ctx := context.Background()

	message := gofakeit.Sentence(12)
	got, err := svc.Submit(ctx, customer, "  "+message+"  ", 5)
	require.NoError(t, err)
	assert.Equal(t, message, got.Message)
	assert.Equal(t, subs[customer].ID, got.SubscriptionID)
	assert.True(t, got.Featured)

	_, err = svc.Submit(ctx, customer, gofakeit.Sentence(12), 4)
	assert.ErrorIs(t, err, testimonial.ErrAlreadySubmitted)
}

func TestSubmit_Errors(t *testing.T) {
	t.Parallel()

	customer := uuid.New()
	svc := testimonial.NewService(testimonial.NewMemoryStore(), withSubscription(customer))
	ctx := context.Background()

	t.Run("no subscription", func(t *testing.T) {
		_, err := svc.Submit(ctx, uuid.New(), gofakeit.Sentence(12), 5)
		assert.ErrorIs(t, err, testimonial.ErrNoSubscriptionFound)
	})

	t.Run("anonymous", func(t *testing.T) {
		_, err := svc.Submit(ctx, uuid.Nil, gofakeit.Sentence(12), 5)
		assert.ErrorIs(t, err, testimonial.ErrUnauthorized)
	})

	tests := []struct {
		name    string
		message string
		rating  int
		field   string
	}{
		{"short message", "too short", 5, "message"},
		{"long message", strings.Repeat("a", testimonial.MaxMessageLen+1), 5, "message"},
		{"markup only", "<p></p><br/>", 5, "message"},
		{"zero rating", gofakeit.Sentence(12), 0, "rating"},
		{"rating above five", gofakeit.Sentence(12), 6, "rating"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, customer, tt.message, tt.rating)
			require.ErrorIs(t, err, validator.ErrValidationFailed)
			assert.True(t, validator.ExtractValidationErrors(err).Has(tt.field))
		})
	}
}

func TestFeatured(t *testing.T) {
	t.Parallel()

	store := testimonial.NewMemoryStore()
	subs := subsByCustomer{}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	svc := testimonial.NewService(store, subs, testimonial.WithClock(clock))

	for i := range 8 {
		customer := uuid.New()
		subs[customer] = &subscription.Subscription{ID: uuid.New(), CustomerID: customer}
		now = now.Add(time.Minute)
		_, err := svc.Submit(context.Background(), customer, gofakeit.Sentence(12), i%5+1)
		require.NoError(t, err)
	}

	t.Run("default limit", func(t *testing.T) {
		items, err := svc.Featured(context.Background(), 0)
		require.NoError(t, err)
		require.Len(t, items, testimonial.DefaultFeaturedLimit)
		assert.True(t, items[0].CreatedAt.After(items[1].CreatedAt))
	})

	t.Run("explicit limit", func(t *testing.T) {
		items, err := svc.Featured(context.Background(), 2)
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("out of range limit", func(t *testing.T) {
		items, err := svc.Featured(context.Background(), testimonial.MaxFeaturedLimit+1)
		require.NoError(t, err)
		assert.Len(t, items, testimonial.DefaultFeaturedLimit)
	})
}
