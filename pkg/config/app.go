package config

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// App is the process level configuration. Infrastructure packages own
// their connection settings (pg.Config, mongo.Config, redis.Config,
// httpserver.Config, retention.Config).
type App struct {
	Env       string `env:"APP_ENV" envDefault:"development"`
	Name      string `env:"APP_NAME" envDefault:"seacatering"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT"` // empty picks a format from APP_ENV

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"memory"`

	JWTSecret   string `env:"JWT_SECRET"`
	JWTIssuer   string `env:"JWT_ISSUER"`
	JWTAudience string `env:"JWT_AUDIENCE"`

	CancelPolicy  string        `env:"CANCEL_POLICY" envDefault:"retain"`
	StatsCacheTTL time.Duration `env:"STATS_CACHE_TTL" envDefault:"1m"`
	RedisEnabled  bool          `env:"REDIS_ENABLED" envDefault:"false"`
	SeedCatalog   bool          `env:"SEED_CATALOG" envDefault:"true"`

	DefaultLanguage string `env:"DEFAULT_LANGUAGE" envDefault:"en"`
}

// Validate reports settings that parse but cannot work together.
func (a App) Validate() error {
	var errs []error

	if !slices.Contains([]string{DriverMemory, DriverMongo, DriverPostgres}, a.StorageDriver) {
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER %q is not one of memory, mongo, postgres", a.StorageDriver))
	}
	if a.CancelPolicy != "retain" && a.CancelPolicy != "delete" {
		errs = append(errs, fmt.Errorf("CANCEL_POLICY %q is not one of retain, delete", a.CancelPolicy))
	}
	if a.IsProduction() && len(a.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 bytes in production"))
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{ErrInvalidApp}, errs...)...)
}

func (a App) IsProduction() bool {
	return a.Env == "production" || a.Env == "prod"
}
