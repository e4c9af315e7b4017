package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"bookcatalog/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for key := range defaults {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv("PORT", "")
	require.NoError(t, os.Unsetenv("PORT"))
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Addr)
	assert.Equal(t, store.DriverMongo, cfg.StoreDriver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURL)
	assert.Equal(t, "book-catalog", cfg.MongoDatabase)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "plaintext", cfg.PasswordHashing)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, int64(102400), cfg.MaxBodyBytes)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.EnableHSTS)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ADDR", "127.0.0.1:9000")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("STORE_TIMEOUT", "750ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("MAX_BODY_BYTES", "2048")
	t.Setenv("ENABLE_HSTS", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, store.DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 750*time.Millisecond, cfg.StoreTimeout)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, int64(2048), cfg.MaxBodyBytes)
	assert.True(t, cfg.EnableHSTS)
}

func TestLoad_PortAlias(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.Addr)

	t.Setenv("APP_ADDR", ":7000")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
}

func TestLoad_UnknownDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "cassandra")

	_, err := Load()
	assert.ErrorIs(t, err, store.ErrUnknownDriver)
}

func TestLoadEnvFiles_DoesNotOverrideExistingEnv(t *testing.T) {
	clearEnv(t)
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, ".env"), []byte("MONGO_URL=from_file\nMONGO_DATABASE=file_db\n"), 0o644))

	t.Setenv("MONGO_URL", "from_env")

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmp))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	LoadEnvFiles()
	t.Cleanup(func() { _ = os.Unsetenv("MONGO_DATABASE") })

	assert.Equal(t, "from_env", os.Getenv("MONGO_URL"))
	assert.Equal(t, "file_db", os.Getenv("MONGO_DATABASE"))
}

func TestConfig_StoreOptions(t *testing.T) {
	cfg := &Config{
		StoreDriver:   store.DriverPostgres,
		MongoURL:      "mongodb://db:27017",
		MongoDatabase: "catalog",
		DatabaseDSN:   "postgres://u:p@db/catalog",
		StoreTimeout:  time.Second,
	}

	assert.Equal(t, store.Options{
		Driver:        store.DriverPostgres,
		MongoURL:      "mongodb://db:27017",
		MongoDatabase: "catalog",
		PostgresDSN:   "postgres://u:p@db/catalog",
		Timeout:       time.Second,
	}, cfg.StoreOptions())
}
