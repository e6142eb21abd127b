package retention

import "errors"

var (
	ErrInvalidRetention = errors.New("retention: retention period must be positive")
	ErrInvalidSchedule  = errors.New("retention: invalid cron schedule")
	ErrPurgeFailed      = errors.New("retention: purge failed")
)
