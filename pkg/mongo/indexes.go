package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	plansCollection         = "plans"
	subscriptionsCollection = "subscriptions"
	historyCollection       = "subscription_history"
	testimonialsCollection  = "testimonials"
)

// EnsureIndexes creates the indexes the repositories rely on. It is
// idempotent and runs on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		plansCollection: {
			{
				Keys:    bson.D{{Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("plans_name_unique"),
			},
		},
		subscriptionsCollection: {
			{
				// one live subscription per customer
				Keys: bson.D{{Key: "customer_id", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetPartialFilterExpression(bson.D{{Key: "live", Value: true}}).
					SetName("subscriptions_live_customer_unique"),
			},
			{
				Keys:    bson.D{{Key: "customer_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("subscriptions_customer_status"),
			},
			{
				Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}},
				Options: options.Index().SetName("subscriptions_status_created"),
			},
		},
		historyCollection: {
			{
				Keys:    bson.D{{Key: "customer_id", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("history_customer_created"),
			},
		},
		testimonialsCollection: {
			{
				Keys:    bson.D{{Key: "customer_id", Value: 1}, {Key: "subscription_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("testimonials_customer_subscription_unique"),
			},
			{
				Keys:    bson.D{{Key: "featured", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("testimonials_featured_created"),
			},
		},
	}

	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Join(ErrFailedToCreateIndexes, err)
		}
	}
	return nil
}
