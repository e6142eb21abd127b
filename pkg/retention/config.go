package retention

import "time"

type Config struct {
	Retention time.Duration `env:"CANCELLED_RETENTION" envDefault:"2160h"` // how long cancelled subscriptions are kept
	Schedule  string        `env:"PURGE_SCHEDULE" envDefault:"@daily"`     // cron spec or descriptor such as @daily
	Timeout   time.Duration `env:"PURGE_TIMEOUT" envDefault:"5m"`          // upper bound for a single scheduled run
}
