package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/seacatering/pkg/catalog"
	"github.com/dmitrymomot/seacatering/pkg/schedule"
	"github.com/dmitrymomot/seacatering/pkg/subscription"
)

type subscriptionDoc struct {
	ID              string     `bson:"_id"`
	CustomerID      string     `bson:"customer_id"`
	PlanID          string     `bson:"plan_id"`
	PlanName        string     `bson:"plan_name"`
	PlanPrice       int64      `bson:"plan_price"`
	MonthlyEstimate int64      `bson:"monthly_estimate"`
	MealTypes       []string   `bson:"meal_types"`
	DeliveryDays    []string   `bson:"delivery_days"`
	Address         string     `bson:"address"`
	Allergies       string     `bson:"allergies,omitempty"`
	Status          string     `bson:"status"`
	Live            bool       `bson:"live"` // drives the partial unique index
	CreatedAt       time.Time  `bson:"created_at"`
	UpdatedAt       time.Time  `bson:"updated_at"`
	PausedAt        *time.Time `bson:"paused_at,omitempty"`
	ReactivatedAt   *time.Time `bson:"reactivated_at,omitempty"`
	CancelledAt     *time.Time `bson:"cancelled_at,omitempty"`
}

func toSubscriptionDoc(s *subscription.Subscription) subscriptionDoc {
	return subscriptionDoc{
		ID:              s.ID.String(),
		CustomerID:      s.CustomerID.String(),
		PlanID:          s.PlanID.String(),
		PlanName:        string(s.PlanName),
		PlanPrice:       s.PlanPrice,
		MonthlyEstimate: s.MonthlyEstimate,
		MealTypes:       stringsOf(s.MealTypes),
		DeliveryDays:    stringsOf(s.DeliveryDays),
		Address:         s.Address,
		Allergies:       s.Allergies,
		Status:          string(s.Status),
		Live:            s.Status.Live(),
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
		PausedAt:        s.PausedAt,
		ReactivatedAt:   s.ReactivatedAt,
		CancelledAt:     s.CancelledAt,
	}
}

func (d subscriptionDoc) subscription() (*subscription.Subscription, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	customerID, err := uuid.Parse(d.CustomerID)
	if err != nil {
		return nil, err
	}
	planID, err := uuid.Parse(d.PlanID)
	if err != nil {
		return nil, err
	}

	return &subscription.Subscription{
		ID:              id,
		CustomerID:      customerID,
		PlanID:          planID,
		PlanName:        catalog.PlanName(d.PlanName),
		PlanPrice:       d.PlanPrice,
		MonthlyEstimate: d.MonthlyEstimate,
		MealTypes:       typedOf[schedule.MealType](d.MealTypes),
		DeliveryDays:    typedOf[schedule.DeliveryDay](d.DeliveryDays),
		Address:         d.Address,
		Allergies:       d.Allergies,
		Status:          subscription.Status(d.Status),
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
		PausedAt:        utc(d.PausedAt),
		ReactivatedAt:   utc(d.ReactivatedAt),
		CancelledAt:     utc(d.CancelledAt),
	}, nil
}

// SubscriptionRepository implements subscription.Repository on MongoDB,
// together with the stats and retention queries.
type SubscriptionRepository struct {
	coll *mongo.Collection
}

func NewSubscriptionRepository(db *mongo.Database) *SubscriptionRepository {
	return &SubscriptionRepository{coll: db.Collection(subscriptionsCollection)}
}

func (r *SubscriptionRepository) FindActiveOrPausedByCustomer(ctx context.Context, customerID uuid.UUID) (*subscription.Subscription, error) {
	return r.findOne(ctx, bson.D{
		{Key: "customer_id", Value: customerID.String()},
		{Key: "live", Value: true},
	})
}

func (r *SubscriptionRepository) FindByCustomerAndStatus(ctx context.Context, customerID uuid.UUID, status subscription.Status) (*subscription.Subscription, error) {
	return r.findOne(ctx, bson.D{
		{Key: "customer_id", Value: customerID.String()},
		{Key: "status", Value: string(status)},
	})
}

func (r *SubscriptionRepository) Insert(ctx context.Context, sub *subscription.Subscription) error {
	_, err := r.coll.InsertOne(ctx, toSubscriptionDoc(sub))
	if mongo.IsDuplicateKeyError(err) {
		return subscription.ErrConflict
	}
	return err
}

func (r *SubscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.D{
			{Key: "_id", Value: sub.ID.String()},
			{Key: "customer_id", Value: sub.CustomerID.String()},
			{Key: "live", Value: true},
		},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "address", Value: sub.Address},
			{Key: "allergies", Value: sub.Allergies},
			{Key: "updated_at", Value: sub.UpdatedAt},
		}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return subscription.ErrNotFound
	}
	return nil
}

// Transition is a single FindOneAndUpdate guarded on the current status.
// The pre-image gives the previous status; the post-image is rebuilt with
// Subscription.Apply so both stay in step.
func (r *SubscriptionRepository) Transition(ctx context.Context, customerID uuid.UUID, from []subscription.Status, to subscription.Status, at time.Time) (*subscription.Subscription, subscription.Status, error) {
	// BSON dates hold milliseconds; the returned record must match the next read.
	at = at.UTC().Truncate(time.Millisecond)

	set := bson.D{
		{Key: "status", Value: string(to)},
		{Key: "live", Value: to.Live()},
		{Key: "updated_at", Value: at},
	}
	if field := subscription.TimestampField(to); field != "" {
		set = append(set, bson.E{Key: field, Value: at})
	}

	var before subscriptionDoc
	err := r.coll.FindOneAndUpdate(ctx,
		bson.D{
			{Key: "customer_id", Value: customerID.String()},
			{Key: "status", Value: bson.D{{Key: "$in", Value: stringsOf(from)}}},
		},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&before)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, "", subscription.ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, "", subscription.ErrConflict
		}
		return nil, "", err
	}

	sub, err := before.subscription()
	if err != nil {
		return nil, "", err
	}
	prev := sub.Status
	sub.Apply(to, at)
	return sub, prev, nil
}

func (r *SubscriptionRepository) Delete(ctx context.Context, customerID, subscriptionID uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{
		{Key: "_id", Value: subscriptionID.String()},
		{Key: "customer_id", Value: customerID.String()},
	})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return subscription.ErrNotFound
	}
	return nil
}

func (r *SubscriptionRepository) CountCreated(ctx context.Context, from, to time.Time) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.D{createdWithin(from, to)})
}

func (r *SubscriptionRepository) SumPlanPrice(ctx context.Context, status subscription.Status, from, to time.Time) (int64, error) {
	return r.sum(ctx, "$plan_price", bson.D{
		{Key: "status", Value: string(status)},
		createdWithin(from, to),
	})
}

func (r *SubscriptionRepository) CountByStatus(ctx context.Context, status subscription.Status) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.D{{Key: "status", Value: string(status)}})
}

func (r *SubscriptionRepository) SumMonthlyEstimate(ctx context.Context, status subscription.Status) (int64, error) {
	return r.sum(ctx, "$monthly_estimate", bson.D{{Key: "status", Value: string(status)}})
}

// PurgeCancelled implements retention.Target.
func (r *SubscriptionRepository) PurgeCancelled(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.D{
		{Key: "status", Value: string(subscription.StatusCancelled)},
		{Key: "cancelled_at", Value: bson.D{{Key: "$lt", Value: before}}},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *SubscriptionRepository) sum(ctx context.Context, field string, match bson.D) (int64, error) {
	cur, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: field}}},
		}}},
	})
	if err != nil {
		return 0, err
	}
	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

func (r *SubscriptionRepository) findOne(ctx context.Context, filter bson.D) (*subscription.Subscription, error) {
	var d subscriptionDoc
	err := r.coll.FindOne(ctx, filter,
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, subscription.ErrNotFound
		}
		return nil, err
	}
	return d.subscription()
}

func createdWithin(from, to time.Time) bson.E {
	return bson.E{Key: "created_at", Value: bson.D{
		{Key: "$gte", Value: from},
		{Key: "$lte", Value: to},
	}}
}

func stringsOf[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}

func typedOf[T ~string](in []string) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = T(v)
	}
	return out
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

var _ subscription.Repository = (*SubscriptionRepository)(nil)
