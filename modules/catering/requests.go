package catering

import (
	"time"

	"github.com/google/uuid"
)

type planPath struct {
	ID uuid.UUID `path:"id"`
}

type addPlanRequest struct {
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
}

type estimateRequest struct {
	PlanID       uuid.UUID `json:"plan_id"`
	MealTypes    []string  `json:"meal_types"`
	DeliveryDays []string  `json:"delivery_days"`
}

type createSubscriptionRequest struct {
	PlanID       uuid.UUID `json:"plan_id"`
	MealTypes    []string  `json:"meal_types"`
	DeliveryDays []string  `json:"delivery_days"`
	Address      string    `json:"delivery_address"`
	Allergies    string    `json:"allergies"`
}

// updateSubscriptionRequest leaves absent fields unchanged.
type updateSubscriptionRequest struct {
	Address   *string `json:"delivery_address"`
	Allergies *string `json:"allergies"`
}

type subscriptionQuery struct {
	Status string `query:"status"`
}

type limitQuery struct {
	Limit int `query:"limit"`
}

type testimonialRequest struct {
	Message string `json:"message"`
	Rating  int    `json:"rating"`
}

type statsQuery struct {
	From time.Time `query:"from"`
	To   time.Time `query:"to"`
}
