package config

import "errors"

var (
	ErrParsingConfig     = errors.New("failed to parse environment variables into config")
	ErrInvalidConfigType = errors.New("invalid config type")
	ErrNilPointer        = errors.New("nil pointer provided to config loader")
	ErrInvalidApp        = errors.New("invalid application config")
)
