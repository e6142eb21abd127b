package stats

import "errors"

var (
	ErrUnauthorized  = errors.New("stats: unauthorized")
	ErrFailedToQuery = errors.New("stats: failed to query aggregates")
)
