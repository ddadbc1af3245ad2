package config_test

import (
	"testing"
	"time"

	"gerbang/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, 168*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.NotEmpty(t, cfg.JWTSecret) // dev fallback secret
	assert.False(t, cfg.Production())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("JWT_SECRET", "supersecret")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, "supersecret", cfg.JWTSecret)
}

func TestLoadProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()
	assert.Error(t, err)
}
