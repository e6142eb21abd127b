package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/seacatering/pkg/config"
	"github.com/dmitrymomot/seacatering/pkg/identity"
	"github.com/dmitrymomot/seacatering/pkg/logger"
	"github.com/dmitrymomot/seacatering/pkg/ratelimiter"
	"github.com/dmitrymomot/seacatering/pkg/rbac"
)

const testSecret = "cli-test-signing-key"

// config.Load caches per type, so every test here sees the first environment.
func setEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "development")
	t.Setenv("STORAGE_DRIVER", config.DriverMemory)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("LOG_LEVEL", "error")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	setEnv(t)

	t.Run("issues a verifiable token", func(t *testing.T) {
		subject := uuid.New()
		out, err := execute(t, "token", "--role", rbac.RoleAdmin, "--subject", subject.String(), "--log-level", "error")
		require.NoError(t, err)

		v, err := identity.NewVerifier(testSecret)
		require.NoError(t, err)
		id, err := v.Verify(strings.TrimSpace(out))
		require.NoError(t, err)
		assert.Equal(t, subject, id.Subject)
		assert.Equal(t, rbac.RoleAdmin, id.Role)
	})

	t.Run("rejects unknown roles", func(t *testing.T) {
		_, err := execute(t, "token", "--role", "chef")
		require.Error(t, err)
		assert.ErrorIs(t, err, rbac.ErrInvalidRole)
	})

	t.Run("rejects malformed subjects", func(t *testing.T) {
		_, err := execute(t, "token", "--subject", "not-a-uuid")
		require.Error(t, err)
	})
}

func TestMaintenanceCommandsOnMemoryStorage(t *testing.T) {
	setEnv(t)

	t.Run("migrate is a no-op", func(t *testing.T) {
		_, err := execute(t, "migrate")
		assert.NoError(t, err)
	})

	t.Run("seed inserts the default plans", func(t *testing.T) {
		out, err := execute(t, "seed")
		require.NoError(t, err)
		assert.Contains(t, out, "inserted 3 plan(s)")
	})

	t.Run("purge reports the count", func(t *testing.T) {
		out, err := execute(t, "purge")
		require.NoError(t, err)
		assert.Contains(t, out, "purged 0 subscription(s)")
	})
}

func TestOpenStorageMemory(t *testing.T) {
	t.Parallel()

	st, err := openStorage(context.Background(), config.App{StorageDriver: config.DriverMemory}, logger.Discard(), storageOptions{})
	require.NoError(t, err)
	assert.NotNil(t, st.plans)
	assert.NotNil(t, st.subs)
	assert.NotNil(t, st.history)
	assert.NotNil(t, st.testimonials)
	assert.Empty(t, st.checks)
	assert.NoError(t, st.Close(context.Background()))
}

func TestOpenStorageUnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := openStorage(context.Background(), config.App{StorageDriver: "sqlite"}, logger.Discard(), storageOptions{})
	assert.Error(t, err)
}

func TestNewRateLimiter(t *testing.T) {
	t.Parallel()

	cfg := ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Second}

	l, err := newRateLimiter(cfg, shared{})
	require.NoError(t, err)
	assert.Nil(t, l, "disabled")

	cfg.Enabled = true
	l, err = newRateLimiter(cfg, shared{})
	require.NoError(t, err)
	require.NotNil(t, l)
	res, err := l.Allow(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	cfg.Capacity = 0
	_, err = newRateLimiter(cfg, shared{})
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
}
