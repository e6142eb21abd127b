package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/seacatering/pkg/testimonial"
)

type testimonialDoc struct {
	ID             string    `bson:"_id"`
	CustomerID     string    `bson:"customer_id"`
	SubscriptionID string    `bson:"subscription_id"`
	Message        string    `bson:"message"`
	Rating         int       `bson:"rating"`
	Featured       bool      `bson:"featured"`
	CreatedAt      time.Time `bson:"created_at"`
}

// TestimonialStore implements testimonial.Store.
type TestimonialStore struct {
	coll *mongo.Collection
}

func NewTestimonialStore(db *mongo.Database) *TestimonialStore {
	return &TestimonialStore{coll: db.Collection(testimonialsCollection)}
}

func (s *TestimonialStore) Insert(ctx context.Context, t testimonial.Testimonial) error {
	_, err := s.coll.InsertOne(ctx, testimonialDoc{
		ID:             t.ID.String(),
		CustomerID:     t.CustomerID.String(),
		SubscriptionID: t.SubscriptionID.String(),
		Message:        t.Message,
		Rating:         t.Rating,
		Featured:       t.Featured,
		CreatedAt:      t.CreatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return testimonial.ErrAlreadySubmitted
	}
	return err
}

func (s *TestimonialStore) ListFeatured(ctx context.Context, limit int) ([]testimonial.Testimonial, error) {
	cur, err := s.coll.Find(ctx,
		bson.D{{Key: "featured", Value: true}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, err
	}
	var docs []testimonialDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]testimonial.Testimonial, 0, len(docs))
	for _, d := range docs {
		t, err := d.testimonial()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (d testimonialDoc) testimonial() (testimonial.Testimonial, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return testimonial.Testimonial{}, err
	}
	customerID, err := uuid.Parse(d.CustomerID)
	if err != nil {
		return testimonial.Testimonial{}, err
	}
	subID, err := uuid.Parse(d.SubscriptionID)
	if err != nil {
		return testimonial.Testimonial{}, err
	}
	return testimonial.Testimonial{
		ID:             id,
		CustomerID:     customerID,
		SubscriptionID: subID,
		Message:        d.Message,
		Rating:         d.Rating,
		Featured:       d.Featured,
		CreatedAt:      d.CreatedAt.UTC(),
	}, nil
}

var _ testimonial.Store = (*TestimonialStore)(nil)
