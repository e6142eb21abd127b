// Package pricing computes subscription cost estimates. Every function here
// is pure: same inputs, same output, no I/O.
package pricing

import (
	"math"

	"github.com/dmitrymomot/seacatering/pkg/schedule"
)

// WeeksPerCycle approximates a billing month as four weeks.
const WeeksPerCycle = 4

// MaxPricePerMeal is the highest per-meal price whose estimate for every meal
// on every day still fits in an int64.
const MaxPricePerMeal int64 = math.MaxInt64 / (3 * 7 * WeeksPerCycle)

// EstimateMonthlyCost returns price × meals × days × WeeksPerCycle.
// It returns 0 when either set is empty instead of failing, and saturates at
// the int64 bounds instead of wrapping.
func EstimateMonthlyCost(pricePerMeal int64, mealTypes []schedule.MealType, deliveryDays []schedule.DeliveryDay) int64 {
	if len(mealTypes) == 0 || len(deliveryDays) == 0 {
		return 0
	}
	factor := int64(len(mealTypes)) * int64(len(deliveryDays)) * WeeksPerCycle
	switch {
	case pricePerMeal > math.MaxInt64/factor:
		return math.MaxInt64
	case pricePerMeal < math.MinInt64/factor:
		return math.MinInt64
	}
	return pricePerMeal * factor
}

// Breakdown is an estimate with the factors that produced it, for display.
type Breakdown struct {
	PlanPrice int64 `json:"plan_price"`
	Meals     int   `json:"meals_per_day"`
	Days      int   `json:"days_per_week"`
	Weeks     int   `json:"weeks_per_cycle"`
	Total     int64 `json:"total"`
}

// Estimate returns the monthly estimate for a selection together with its factors.
func Estimate(pricePerMeal int64, sel schedule.Selection) Breakdown {
	return Breakdown{
		PlanPrice: pricePerMeal,
		Meals:     len(sel.MealTypes),
		Days:      len(sel.DeliveryDays),
		Weeks:     WeeksPerCycle,
		Total:     EstimateMonthlyCost(pricePerMeal, sel.MealTypes, sel.DeliveryDays),
	}
}
