package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"CONFIG_FILE", "HTTP_ADDR", "REQUEST_TIMEOUT", "DATABASE_DSN", "RUN_MIGRATIONS", "CART_STORE",
	"CART_SQLITE_PATH", "REDIS_URL", "CART_TTL", "RABBITMQ_URL", "PUBLISH_EVENTS", "ADMIN_UID",
	"CORS_ALLOW_ORIGINS", "CART_MAX_SESSIONS", "CART_IDLE_TIMEOUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, defaults(), cfg)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("CART_STORE", "Redis")
	t.Setenv("CART_TTL", "2h")
	t.Setenv("CART_MAX_SESSIONS", "500")
	t.Setenv("CART_IDLE_TIMEOUT", "5m")
	t.Setenv("PUBLISH_EVENTS", "yes")
	t.Setenv("RUN_MIGRATIONS", "0")
	t.Setenv("REQUEST_TIMEOUT", "not-a-duration")
	t.Setenv("ADMIN_UID", "admin-1")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://shop.example.com, ,https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr)
	require.Equal(t, CartStoreRedis, cfg.CartStore)
	require.Equal(t, 2*time.Hour, cfg.CartTTL)
	require.Equal(t, 500, cfg.CartMaxSessions)
	require.Equal(t, 5*time.Minute, cfg.CartIdleTimeout)
	require.True(t, cfg.PublishEvents)
	require.False(t, cfg.RunMigrations)
	require.Equal(t, 3*time.Second, cfg.RequestTimeout)
	require.Equal(t, "admin-1", cfg.AdminUID)
	require.Equal(t, []string{"https://shop.example.com", "https://admin.example.com"}, cfg.CORSAllowOrigins)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	yaml := `
httpAddr: ":7000"
cartStore: sqlite
cartSqlitePath: /var/lib/storefront/cart.db
publishEvents: true
requestTimeout: 5s
adminUid: from-file
cartMaxSessions: 64
cartIdleTimeout: 90s
corsAllowOrigins:
  - https://shop.example.com
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("ADMIN_UID", "from-env")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":7000", cfg.HTTPAddr)
	require.Equal(t, CartStoreSQLite, cfg.CartStore)
	require.Equal(t, "/var/lib/storefront/cart.db", cfg.CartSQLitePath)
	require.True(t, cfg.PublishEvents)
	require.Equal(t, 5*time.Second, cfg.RequestTimeout)
	require.Equal(t, "from-env", cfg.AdminUID)
	require.Equal(t, 64, cfg.CartMaxSessions)
	require.Equal(t, 90*time.Second, cfg.CartIdleTimeout)
	require.True(t, cfg.RunMigrations)
	require.Equal(t, []string{"https://shop.example.com"}, cfg.CORSAllowOrigins)
}

func TestLoadErrors(t *testing.T) {
	t.Run("unknown cart store", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CART_STORE", "localstorage")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("malformed file", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("httpAddr: [unterminated"), 0o600))
		t.Setenv("CONFIG_FILE", path)

		_, err := Load()
		require.Error(t, err)
	})
}
