package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Store persists plans. Insert returns ErrDuplicatePlan when the name is
// already taken; lookups return ErrPlanNotFound.
type Store interface {
	List(ctx context.Context) ([]Plan, error)
	GetByID(ctx context.Context, id uuid.UUID) (Plan, error)
	GetByName(ctx context.Context, name PlanName) (Plan, error)
	Insert(ctx context.Context, plan Plan) error
}
