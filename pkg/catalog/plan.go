package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/seacatering/pkg/pricing"
)

// PlanName is one of the fixed subscription tiers.
type PlanName string

const (
	Diet    PlanName = "Diet"
	Protein PlanName = "Protein"
	Royal   PlanName = "Royal"
)

// PlanNames lists every tier.
var PlanNames = []PlanName{Diet, Protein, Royal}

// MinPrice is the lowest accepted per-meal price.
const MinPrice int64 = 1000

// MaxPrice keeps the largest possible monthly estimate within int64.
const MaxPrice = pricing.MaxPricePerMeal

// ParsePlanName matches a tier name case-insensitively.
func ParsePlanName(s string) (PlanName, bool) {
	s = strings.TrimSpace(s)
	for _, n := range PlanNames {
		if strings.EqualFold(s, string(n)) {
			return n, true
		}
	}
	return "", false
}

// Plan is a subscription tier with a fixed per-meal price.
type Plan struct {
	ID          uuid.UUID `json:"id"`
	Name        PlanName  `json:"name"`
	Price       int64     `json:"price"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DefaultPlans returns the launch tiers, seeded on first start.
func DefaultPlans() []Plan {
	return []Plan{
		{Name: Diet, Price: 30000, Description: "Balanced low-calorie meals for weight management."},
		{Name: Protein, Price: 40000, Description: "High-protein meals for an active lifestyle."},
		{Name: Royal, Price: 60000, Description: "Premium chef-crafted menu with the widest variety."},
	}
}
