package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/seacatering/pkg/subscription"
)

type historyDoc struct {
	ID             string    `bson:"_id"`
	SubscriptionID string    `bson:"subscription_id"`
	CustomerID     string    `bson:"customer_id"`
	Action         string    `bson:"action"`
	FromStatus     string    `bson:"from_status,omitempty"`
	ToStatus       string    `bson:"to_status"`
	CreatedAt      time.Time `bson:"created_at"`
}

// HistoryStore implements subscription.HistoryStore.
type HistoryStore struct {
	coll *mongo.Collection
}

func NewHistoryStore(db *mongo.Database) *HistoryStore {
	return &HistoryStore{coll: db.Collection(historyCollection)}
}

func (s *HistoryStore) Append(ctx context.Context, e subscription.HistoryEntry) error {
	_, err := s.coll.InsertOne(ctx, historyDoc{
		ID:             e.ID.String(),
		SubscriptionID: e.SubscriptionID.String(),
		CustomerID:     e.CustomerID.String(),
		Action:         string(e.Action),
		FromStatus:     string(e.FromStatus),
		ToStatus:       string(e.ToStatus),
		CreatedAt:      e.CreatedAt,
	})
	return err
}

func (s *HistoryStore) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]subscription.HistoryEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := s.coll.Find(ctx, bson.D{{Key: "customer_id", Value: customerID.String()}}, opts)
	if err != nil {
		return nil, err
	}
	var docs []historyDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]subscription.HistoryEntry, 0, len(docs))
	for _, d := range docs {
		id, err := uuid.Parse(d.ID)
		if err != nil {
			return nil, err
		}
		subID, err := uuid.Parse(d.SubscriptionID)
		if err != nil {
			return nil, err
		}
		out = append(out, subscription.HistoryEntry{
			ID:             id,
			SubscriptionID: subID,
			CustomerID:     customerID,
			Action:         subscription.Action(d.Action),
			FromStatus:     subscription.Status(d.FromStatus),
			ToStatus:       subscription.Status(d.ToStatus),
			CreatedAt:      d.CreatedAt.UTC(),
		})
	}
	return out, nil
}

var _ subscription.HistoryStore = (*HistoryStore)(nil)
