package ratelimiter

import "errors"

var (
	ErrInvalidConfig    = errors.New("ratelimiter: invalid configuration")
	ErrLimitExceeded    = errors.New("ratelimiter: limit exceeded")
	ErrStoreUnavailable = errors.New("ratelimiter: store unavailable")
)
