// Package validator provides declarative input rules for request payloads.
//
// A Rule couples a Check func with translation-friendly error metadata.
// Apply evaluates a list of rules and aggregates the failures into a
// ValidationErrors value, which implements error and matches
// ErrValidationFailed via errors.Is:
//
//	err := validator.Apply(
//	    validator.RequiredString("address", address),
//	    validator.MaxLenString("address", address, 500),
//	    validator.RequiredSlice("meal_types", meals),
//	)
//	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
//	    // render per-field messages
//	}
//
// The package holds no global state and is safe for concurrent use.
package validator
