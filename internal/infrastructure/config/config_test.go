package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "reqtrace-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "reqtrace", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "memory", cfg.Idempotency.Backend)
		assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL)
		assert.Equal(t, "reqtrace-backend", cfg.Telemetry.ServiceName)
		assert.False(t, cfg.Printing.Enabled)
		assert.True(t, cfg.Auth.SyncPrincipals)
		assert.Equal(t, 5*time.Minute, cfg.Auth.SyncInterval)
	})

	t.Run("principal sync can be turned off", func(t *testing.T) {
		t.Setenv("REQTRACE_AUTH_SYNC_PRINCIPALS", "false")
		t.Setenv("REQTRACE_AUTH_SYNC_INTERVAL", "30s")

		cfg, err := Load()
		require.NoError(t, err)

		assert.False(t, cfg.Auth.SyncPrincipals)
		assert.Equal(t, 30*time.Second, cfg.Auth.SyncInterval)
	})

	t.Run("loads values from environment variables with REQTRACE prefix", func(t *testing.T) {
		t.Setenv("REQTRACE_APP_NAME", "test-app")
		t.Setenv("REQTRACE_APP_PORT", "9000")
		t.Setenv("REQTRACE_DATABASE_DRIVER", "sqlite")
		t.Setenv("REQTRACE_DATABASE_SQLITE_PATH", "/tmp/rt.db")
		t.Setenv("REQTRACE_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("REQTRACE_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("REQTRACE_AUTH_JWT_SECRET", "s3cret")
		t.Setenv("REQTRACE_IDEMPOTENCY_TTL", "10m")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, "/tmp/rt.db", cfg.Database.SQLitePath)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
		assert.Equal(t, 10*time.Minute, cfg.Idempotency.TTL)
		assert.Equal(t, "test-app", cfg.Telemetry.ServiceName)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		t.Setenv("REQTRACE_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("REQTRACE_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		t.Setenv("REQTRACE_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("redis idempotency requires redis", func(t *testing.T) {
		t.Setenv("REQTRACE_IDEMPOTENCY_ENABLED", "true")
		t.Setenv("REQTRACE_IDEMPOTENCY_BACKEND", "redis")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis.enabled")
	})

	t.Run("revocation check requires redis", func(t *testing.T) {
		t.Setenv("REQTRACE_AUTH_REVOCATION_CHECK", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "auth.revocation_check")
	})

	t.Run("sampling ratio out of range", func(t *testing.T) {
		t.Setenv("REQTRACE_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		t.Setenv("REQTRACE_APP_ENV", "production")
		t.Setenv("REQTRACE_AUTH_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		t.Setenv("REQTRACE_DATABASE_PASSWORD", "secure-password")
		t.Setenv("REQTRACE_DATABASE_SSLMODE", "require")
	}

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.App.IsProduction())
	})

	t.Run("requires jwt secret in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("REQTRACE_AUTH_JWT_SECRET", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "auth.jwt_secret is required in production")
	})

	t.Run("requires jwt secret at least 32 characters", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("REQTRACE_AUTH_JWT_SECRET", "short-secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 characters")
	})

	t.Run("requires database password", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("REQTRACE_DATABASE_PASSWORD", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("REQTRACE_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})

	t.Run("rejects sqlite", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("REQTRACE_DATABASE_DRIVER", "sqlite")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be postgres in production")
	})

	t.Run("rejects CORS wildcard", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("REQTRACE_HTTP_CORS_ALLOW_ORIGINS", "*")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cors_allow_origins")
	})

	t.Run("rejects full SQL tracing", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("REQTRACE_TELEMETRY_DB_LOG_FULL_SQL", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db_log_full_sql")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "/testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
