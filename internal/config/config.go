// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8000).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// MongoURI is the MongoDB connection string; required.
	MongoURI string `mapstructure:"MONGO_URI"`
	// MongoDBName is the database name; required.
	MongoDBName string `mapstructure:"MONGO_DB_NAME"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file; required.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file; required.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim (e.g. "horizon.auth").
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "horizon.api").
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// AccessTokenTTLMinutes is the access token lifetime in minutes.
	AccessTokenTTLMinutes int `mapstructure:"ACCESS_TOKEN_TTL_MINUTES"`
	// RefreshTokenTTLDays is the refresh token lifetime in days.
	RefreshTokenTTLDays int `mapstructure:"REFRESH_TOKEN_TTL_DAYS"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// WebhookURL is the external sink endpoint for the api/audit log pipeline.
	// Empty disables the delivery workers; enqueue still works and events are dropped.
	WebhookURL string `mapstructure:"WEBHOOK_URL"`
	// CookieSecure controls the Secure attribute on the refresh cookie. Default true.
	CookieSecure bool `mapstructure:"COOKIE_SECURE"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8000")
	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DB_NAME", "")
	v.SetDefault("JWT_PRIVATE_KEY", "")
	v.SetDefault("JWT_PUBLIC_KEY", "")
	v.SetDefault("JWT_ISSUER", "horizon.auth")
	v.SetDefault("JWT_AUDIENCE", "horizon.api")
	v.SetDefault("ACCESS_TOKEN_TTL_MINUTES", 5)
	v.SetDefault("REFRESH_TOKEN_TTL_DAYS", 30)
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("WEBHOOK_URL", "")
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.MongoURI == "" {
		return nil, errors.New("config: MONGO_URI must be set")
	}
	if cfg.MongoDBName == "" {
		return nil, errors.New("config: MONGO_DB_NAME must be set")
	}
	if cfg.JWTPrivateKey == "" || cfg.JWTPublicKey == "" {
		return nil, errors.New("config: JWT_PRIVATE_KEY and JWT_PUBLIC_KEY must be set")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if cfg.AccessTokenTTLMinutes <= 0 {
		return nil, errors.New("config: ACCESS_TOKEN_TTL_MINUTES must be positive")
	}
	if cfg.RefreshTokenTTLDays <= 0 {
		return nil, errors.New("config: REFRESH_TOKEN_TTL_DAYS must be positive")
	}

	return &cfg, nil
}

// AccessTTL returns the access token lifetime as a time.Duration.
func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}

// RefreshTTL returns the refresh token lifetime as a time.Duration.
func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTLDays) * 24 * time.Hour
}
