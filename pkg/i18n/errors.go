package i18n

import "errors"

var (
	ErrFailedToReadFile  = errors.New("failed to read translation file")
	ErrFailedToParseYAML = errors.New("failed to parse YAML content")
	ErrInvalidStructure  = errors.New("invalid translation file structure")
	ErrNoTranslations    = errors.New("no translations loaded")
)
