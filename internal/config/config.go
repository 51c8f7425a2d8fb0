// Package config loads environment configuration, honoring a local .env file.
package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings.
type Config struct {
	Addr         string
	Env          string
	WebDir       string
	DatabaseURL  string
	JWTSecret    string
	TokenTTL     time.Duration
	MLServiceURL string
	Log          LogConfig
	OIDC         OIDCConfig
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string
	Format string
}

// OIDCConfig configures the optional SSO login. SSO is enabled when
// IssuerURL is set.
type OIDCConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Enabled reports whether SSO login is configured.
func (c OIDCConfig) Enabled() bool {
	return c.IssuerURL != ""
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:         getEnvOrDefault("ADDR", ":8080"),
		Env:          getEnvOrDefault("APP_ENV", "development"),
		WebDir:       getEnvOrDefault("WEB_DIR", "web"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		TokenTTL:     24 * time.Hour,
		MLServiceURL: getEnvOrDefault("ML_SERVICE_URL", "http://localhost:5000"),
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "text"),
		},
		OIDC: OIDCConfig{
			IssuerURL:    os.Getenv("OIDC_ISSUER_URL"),
			ClientID:     os.Getenv("OIDC_CLIENT_ID"),
			ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
		},
	}

	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, errors.New("TOKEN_TTL must be a duration like 24h")
		}
		cfg.TokenTTL = d
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	return cfg, nil
}

// Production reports whether the app runs in production mode. Error detail
// in 500 responses is suppressed in production.
func (c *Config) Production() bool {
	return c.Env == "production"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
