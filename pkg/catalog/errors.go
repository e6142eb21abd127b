package catalog

import "errors"

var (
	ErrPlanNotFound  = errors.New("catalog: plan not found")
	ErrDuplicatePlan = errors.New("catalog: plan with this name already exists")
	ErrFailedToLoad  = errors.New("catalog: failed to load plans")
	ErrFailedToSave  = errors.New("catalog: failed to save plan")
	ErrUnauthorized  = errors.New("catalog: unauthorized")
)
