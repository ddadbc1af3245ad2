package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all process-wide settings. It is built once at startup
// and injected into the services that need it; nothing reads viper
// after Load returns.
type Config struct {
	AppPort     string
	AppEnv      string // "development" or "production"
	DatabaseDSN string // empty means in-memory repository
	RabbitMQURL string // empty disables event publishing
	JWTSecret   string
	TokenTTL    time.Duration
	BcryptCost  int
	AllowOrigin string // origin of the SPA client, for CORS
}

// Load reads configuration from environment variables via Viper,
// applying defaults for everything except the JWT secret in production.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", "168h") // 7 days
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("ALLOW_ORIGIN", "http://localhost:5173")
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:     v.GetString("APP_PORT"),
		AppEnv:      v.GetString("APP_ENV"),
		DatabaseDSN: v.GetString("DATABASE_DSN"),
		RabbitMQURL: v.GetString("RABBITMQ_URL"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		TokenTTL:    v.GetDuration("TOKEN_TTL"),
		BcryptCost:  v.GetInt("BCRYPT_COST"),
		AllowOrigin: v.GetString("ALLOW_ORIGIN"),
	}

	if cfg.JWTSecret == "" {
		if cfg.AppEnv == "production" {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = "dev_jwt_secret"
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be a positive duration")
	}

	return cfg, nil
}

// Production reports whether the process runs with production settings.
// Cookies are only marked Secure in production so local development
// over plain HTTP keeps working.
func (c *Config) Production() bool {
	return c.AppEnv == "production"
}
