package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/seacatering/pkg/catalog"
)

type planDoc struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Price       int64     `bson:"price"`
	Description string    `bson:"description,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (d planDoc) plan() (catalog.Plan, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return catalog.Plan{}, err
	}
	return catalog.Plan{
		ID:          id,
		Name:        catalog.PlanName(d.Name),
		Price:       d.Price,
		Description: d.Description,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}, nil
}

// PlanStore implements catalog.Store.
type PlanStore struct {
	coll *mongo.Collection
}

func NewPlanStore(db *mongo.Database) *PlanStore {
	return &PlanStore{coll: db.Collection(plansCollection)}
}

func (s *PlanStore) List(ctx context.Context) ([]catalog.Plan, error) {
	cur, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	var docs []planDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	plans := make([]catalog.Plan, 0, len(docs))
	for _, d := range docs {
		p, err := d.plan()
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func (s *PlanStore) GetByID(ctx context.Context, id uuid.UUID) (catalog.Plan, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
}

func (s *PlanStore) GetByName(ctx context.Context, name catalog.PlanName) (catalog.Plan, error) {
	return s.findOne(ctx, bson.D{{Key: "name", Value: string(name)}})
}

func (s *PlanStore) Insert(ctx context.Context, p catalog.Plan) error {
	_, err := s.coll.InsertOne(ctx, planDoc{
		ID:          p.ID.String(),
		Name:        string(p.Name),
		Price:       p.Price,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return catalog.ErrDuplicatePlan
	}
	return err
}

func (s *PlanStore) findOne(ctx context.Context, filter bson.D) (catalog.Plan, error) {
	var d planDoc
	if err := s.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return catalog.Plan{}, catalog.ErrPlanNotFound
		}
		return catalog.Plan{}, err
	}
	return d.plan()
}

var _ catalog.Store = (*PlanStore)(nil)
