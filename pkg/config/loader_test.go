package config_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/seacatering/pkg/config"
)

type loadOnceConfig struct {
	Value string `env:"CONFIG_TEST_LOAD_ONCE" envDefault:"first"`
}

type defaultsConfig struct {
	Name    string        `env:"CONFIG_TEST_DEFAULT_NAME" envDefault:"catering"`
	Workers int           `env:"CONFIG_TEST_DEFAULT_WORKERS" envDefault:"4"`
	TTL     time.Duration `env:"CONFIG_TEST_DEFAULT_TTL" envDefault:"90s"`
}

type requiredConfig struct {
	Secret string `env:"CONFIG_TEST_REQUIRED_SECRET,required"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg defaultsConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "catering", cfg.Name)
		assert.Equal(t, 4, cfg.Workers)
		assert.Equal(t, 90*time.Second, cfg.TTL)
	})

	t.Run("parsed once per type", func(t *testing.T) {
		t.Setenv("CONFIG_TEST_LOAD_ONCE", "first")
		var a loadOnceConfig
		require.NoError(t, config.Load(&a))

		t.Setenv("CONFIG_TEST_LOAD_ONCE", "second")
		var b loadOnceConfig
		require.NoError(t, config.Load(&b))

		assert.Equal(t, "first", b.Value)
	})

	t.Run("missing required", func(t *testing.T) {
		var cfg requiredConfig
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
		assert.Panics(t, func() { config.MustLoad(&cfg) })
	})

	t.Run("nil pointer", func(t *testing.T) {
		assert.ErrorIs(t, config.Load[defaultsConfig](nil), config.ErrNilPointer)
	})
}

type concurrentConfig struct {
	Value string `env:"CONFIG_TEST_CONCURRENT" envDefault:"shared"`
}

func TestLoad_Concurrent(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	results := make([]string, 32)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var cfg concurrentConfig
			if err := config.Load(&cfg); err == nil {
				results[i] = cfg.Value
			}
		}()
	}
	wg.Wait()

	for _, v := range results {
		assert.Equal(t, "shared", v)
	}
}

func TestApp_Validate(t *testing.T) {
	t.Parallel()

	valid := config.App{
		Env:           "development",
		StorageDriver: config.DriverMemory,
		CancelPolicy:  "retain",
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*config.App)
	}{
		{"unknown driver", func(a *config.App) { a.StorageDriver = "sqlite" }},
		{"unknown cancel policy", func(a *config.App) { a.CancelPolicy = "archive" }},
		{"short secret in production", func(a *config.App) { a.Env = "production"; a.JWTSecret = "short" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			app := valid
			tt.mutate(&app)
			assert.ErrorIs(t, app.Validate(), config.ErrInvalidApp)
		})
	}
}
