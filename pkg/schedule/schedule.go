package schedule

import (
	"slices"
	"strings"

	"github.com/dmitrymomot/seacatering/pkg/validator"
)

// MealType is a delivery slot within a day.
type MealType string

const (
	Breakfast MealType = "Breakfast"
	Lunch     MealType = "Lunch"
	Dinner    MealType = "Dinner"
)

// MealTypes lists every meal type in canonical order.
var MealTypes = []MealType{Breakfast, Lunch, Dinner}

// DeliveryDay is a weekday on which meals are delivered.
type DeliveryDay string

const (
	Monday    DeliveryDay = "Monday"
	Tuesday   DeliveryDay = "Tuesday"
	Wednesday DeliveryDay = "Wednesday"
	Thursday  DeliveryDay = "Thursday"
	Friday    DeliveryDay = "Friday"
	Saturday  DeliveryDay = "Saturday"
	Sunday    DeliveryDay = "Sunday"
)

// DeliveryDays lists every delivery day in canonical order, Monday first.
var DeliveryDays = []DeliveryDay{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseMealType matches a meal type name case-insensitively.
func ParseMealType(s string) (MealType, bool) {
	return parse(s, MealTypes)
}

// ParseDeliveryDay matches a weekday name case-insensitively.
func ParseDeliveryDay(s string) (DeliveryDay, bool) {
	return parse(s, DeliveryDays)
}

func parse[T ~string](s string, all []T) (T, bool) {
	s = strings.TrimSpace(s)
	for _, v := range all {
		if strings.EqualFold(s, string(v)) {
			return v, true
		}
	}
	return "", false
}

// Selection is a validated, canonically ordered schedule.
type Selection struct {
	MealTypes    []MealType
	DeliveryDays []DeliveryDay
}

// Parse validates raw meal type and delivery day names. Both sets must be
// non-empty, contain only known values and hold no duplicates. The result is
// sorted in canonical order so equal selections compare equal.
func Parse(mealTypes, deliveryDays []string) (Selection, error) {
	meals, mealsOK := parseAll(mealTypes, MealTypes)
	days, daysOK := parseAll(deliveryDays, DeliveryDays)

	if err := validator.Apply(
		validator.RequiredSlice("meal_types", mealTypes),
		validator.RequiredSlice("delivery_days", deliveryDays),
		knownValues("meal_types", mealsOK, MealTypes),
		knownValues("delivery_days", daysOK, DeliveryDays),
		validator.UniqueSlice("meal_types", meals),
		validator.UniqueSlice("delivery_days", days),
	); err != nil {
		return Selection{}, err
	}

	return Selection{
		MealTypes:    Canonical(meals, MealTypes),
		DeliveryDays: Canonical(days, DeliveryDays),
	}, nil
}

// Canonical returns a copy of values sorted by their position in order.
// Values missing from order sort last.
func Canonical[T comparable](values []T, order []T) []T {
	out := slices.Clone(values)
	rank := func(v T) int {
		if i := slices.Index(order, v); i >= 0 {
			return i
		}
		return len(order)
	}
	slices.SortStableFunc(out, func(a, b T) int { return rank(a) - rank(b) })
	return out
}

func parseAll[T ~string](raw []string, all []T) ([]T, bool) {
	out := make([]T, 0, len(raw))
	ok := true
	for _, s := range raw {
		v, found := parse(s, all)
		if !found {
			ok = false
			continue
		}
		out = append(out, v)
	}
	return out, ok
}

func knownValues[T any](field string, ok bool, allowed []T) validator.Rule {
	return validator.Rule{
		Check: func() bool { return ok },
		Error: validator.ValidationError{
			Field:          field,
			Message:        "contains an unknown value",
			TranslationKey: "validation.in_list",
			TranslationValues: map[string]any{
				"field":          field,
				"allowed_values": allowed,
			},
		},
	}
}
