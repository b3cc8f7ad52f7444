package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ferreteria/internal/core/tx"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ferreteria")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, tx.ReadCommitted, cfg.DefaultIsolation)
	assert.Equal(t, 25, cfg.DBMaxConns)
	assert.Equal(t, 30*24*time.Hour, cfg.BackupRetention)
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestLoad_PoolSizeOverride(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ferreteria")
	t.Setenv("DB_MAX_CONNS", "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.DBMaxConns)
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_IsolationOverride(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ferreteria")
	t.Setenv("TX_DEFAULT_ISOLATION", "serializable")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, tx.Serializable, cfg.DefaultIsolation)
}

func TestLoad_RejectsUnknownIsolation(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ferreteria")
	t.Setenv("TX_DEFAULT_ISOLATION", "CHAOS")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ProductionNeedsJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ferreteria")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}
