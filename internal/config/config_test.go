package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET_KEY": "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "HS256", cfg.JWT.Algorithm)
	assert.Equal(t, time.Hour, cfg.JWT.TokenTTL())
	assert.Equal(t, 10, cfg.LoginRateLimit)
	assert.Equal(t, time.Minute, cfg.LoginRateWindow)
	assert.Empty(t, cfg.Redis.Addr)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET_KEY":              "secret",
		"DB_DRIVER":                   "mysql",
		"GIN_MODE":                    "release",
		"ACCESS_TOKEN_EXPIRE_MINUTES": "15",
		"REDIS_ADDR":                  "localhost:6379",
		"LOGIN_RATE_WINDOW":           "30s",
	}))
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 15*time.Minute, cfg.JWT.TokenTTL())
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.LoginRateWindow)
}

func TestLoadFrom_RequiresSecret(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	assert.Error(t, err)
}

func TestLoadFrom_RejectsUnknownDriver(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET_KEY": "secret",
		"DB_DRIVER":      "oracle",
	}))
	assert.Error(t, err)
}

func TestLoadFrom_RejectsNonPositiveExpiry(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET_KEY":              "secret",
		"ACCESS_TOKEN_EXPIRE_MINUTES": "0",
	}))
	assert.Error(t, err)
}

func TestLoadDB_IgnoresJWT(t *testing.T) {
	cfg, err := LoadDB(context.Background(), envconfig.MapLookuper(map[string]string{
		"DB_HOST": "db.internal",
	}))
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, "postgres", cfg.Driver)

	_, err = LoadDB(context.Background(), envconfig.MapLookuper(map[string]string{
		"DB_DRIVER": "oracle",
	}))
	assert.Error(t, err)
}
