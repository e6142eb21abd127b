// Package i18n translates user-facing messages for the catering API.
//
// Translations live in YAML files keyed by language at the top level and
// nested by section below it:
//
//	en:
//	  error:
//	    plan_not_found: "Meal plan not found"
//	  validation:
//	    required: "%{field} is required"
//
// English and Indonesian files are embedded and loaded by New. Additional
// files can be layered on top with WithFiles. Nested keys are flattened to
// dotted paths ("error.plan_not_found") and placeholders use the %{name}
// form.
//
// The preferred language is negotiated from the "lang" query parameter or
// the Accept-Language header with golang.org/x/text/language, stored in the
// request context by Middleware and read back with GetLocale.
package i18n
