package statemachine

import "errors"

var (
	ErrInvalidTransition = errors.New("invalid transition: event, source states and target are required")
	ErrInvalidEvent      = errors.New("invalid event: event is not defined in the table")
)
