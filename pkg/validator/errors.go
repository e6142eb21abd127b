package validator

import "errors"

// ErrValidationFailed matches any ValidationErrors value through errors.Is.
var ErrValidationFailed = errors.New("validation failed")
