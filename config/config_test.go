package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every key Load reads; getEnv treats empty as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_PORT", "PORT", "SESSION_SECRET", "SESSION_COOKIE_NAME", "SESSION_COOKIE_SECURE",
		"SESSION_STORE", "DB_DRIVER", "DB_PATH", "DATABASE_URI", "DB_HOST", "DB_PORT", "DB_USER",
		"DB_PASSWORD", "DB_NAME", "DB_QUERY_TIMEOUT_SEC", "REDIS_ENABLED", "REDIS_HOST",
		"REDIS_PORT", "REDIS_DB", "REDIS_PASSWORD", "LOG_LEVEL", "LOG_PATH", "LOG_MAX_SIZE_MB",
		"LOG_MAX_BACKUPS", "LOG_MAX_AGE_DAYS", "LOG_COMPRESS", "GIN_MODE", "GIN_PATH",
		"RATE_LIMIT_PER_MINUTE", "CORS_ALLOWED_ORIGINS", "STATIC_DIR", "METRICS_ENABLED",
		"TIMEZONE", "TIP_CACHE_TTL_SEC",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, "greenhabit_sid", cfg.SessionCookieName)
	assert.Equal(t, "memory", cfg.SessionStore)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, filepath.Join("data", "greenhabit.sqlite"), cfg.DBPath)
	assert.Equal(t, 5*time.Second, cfg.QueryTimeout())
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "public", cfg.StaticDir)
	assert.Equal(t, 3600, cfg.TipCacheTTLSec)
	assert.False(t, cfg.MetricsEnabled)
}

func TestLoad_JSONFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `{
		"app": {"AppPort": "8080", "StaticDir": "web", "Timezone": "UTC", "MetricsEnabled": true,
		        "AllowedOrigins": ["https://a.example", "https://b.example"]},
		"session": {"Secret": "s3cret", "CookieName": "sid", "CookieSecure": true, "Store": "redis"},
		"database": {"Driver": "mysql", "DBHost": "db", "DBPort": "3307", "QueryTimeoutSec": 9},
		"redis": {"Enabled": true, "RedisHost": "cache", "RedisPort": 6380},
		"log": {"Level": "debug", "GinMode": "debug", "MaxBackups": 10}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "web", cfg.StaticDir)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "s3cret", cfg.SessionSecret)
	assert.Equal(t, "sid", cfg.SessionCookieName)
	assert.True(t, cfg.SessionCookieSecure)
	assert.Equal(t, "redis", cfg.SessionStore)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "db", cfg.DBHost)
	assert.Equal(t, "3307", cfg.DBPort)
	assert.Equal(t, 9*time.Second, cfg.QueryTimeout())
	assert.True(t, cfg.RedisEnabled)
	assert.Equal(t, "cache", cfg.RedisHost)
	assert.Equal(t, 6380, cfg.RedisPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 10, cfg.LogMaxBackups)
	// Unset keys still get defaults.
	assert.Equal(t, 7, cfg.LogMaxAgeDays)
	require.NoError(t, cfg.Validate())
}

func TestLoad_InvalidJSON(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeConfig(t, `{"app":`))
	require.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `{"app": {"AppPort": "8080"}, "session": {"Secret": "from-file"}}`)

	t.Setenv("APP_PORT", "9000")
	t.Setenv("PORT", "9100")
	t.Setenv("SESSION_SECRET", "from-env")
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://x.example , ,https://y.example")
	t.Setenv("SESSION_COOKIE_SECURE", "true")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "5")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.AppPort)
	assert.Equal(t, "from-env", cfg.SessionSecret)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, []string{"https://x.example", "https://y.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.SessionCookieSecure)
	assert.Equal(t, 5, cfg.RateLimitPerMinute)
}

func TestLoad_BadEnvValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_PORT", "not-a-port")
	t.Setenv("LOG_COMPRESS", "maybe")

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_PORT")
	assert.Contains(t, err.Error(), "LOG_COMPRESS")
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.ErrorContains(t, cfg.Validate(), "SESSION_SECRET")

	cfg.SessionSecret = "secret"
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.DBDriver = "postgres"
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.SessionStore = "file"
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Timezone = "Mars/Olympus_Mons"
	assert.Error(t, bad.Validate())
}

func TestLocation(t *testing.T) {
	loc, err := AppConfig{Timezone: "Local"}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = AppConfig{Timezone: "UTC"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestOpenDatabase_SQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "app.sqlite")
	db, err := OpenDatabase(AppConfig{DBDriver: "sqlite", DBPath: path, LogLevel: "silent"})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	_, err = os.Stat(path)
	assert.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestOpenDatabase_UnknownDriver(t *testing.T) {
	_, err := OpenDatabase(AppConfig{DBDriver: "oracle"})
	assert.ErrorContains(t, err, "unsupported database driver")
}
