// Package config loads client and dev-server settings from the environment
// and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config holds every setting of the CLI and the dev server.
type Config struct {
	// APIBaseURL is the backend the client talks to.
	APIBaseURL string `mapstructure:"API_BASE_URL"`
	// RequestTimeout bounds each HTTP request (e.g. "30s").
	RequestTimeout string `mapstructure:"REQUEST_TIMEOUT"`

	// StoreDriver selects where client state is persisted.
	StoreDriver string `mapstructure:"STORE_DRIVER"`
	// StorePath is the SQLite file used by the sqlite driver.
	StorePath   string `mapstructure:"STORE_PATH"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	RedisAddr   string `mapstructure:"REDIS_ADDR"`
	RedisPass   string `mapstructure:"REDIS_PASSWORD"`
	RedisDB     int    `mapstructure:"REDIS_DB"`
	RedisPrefix string `mapstructure:"REDIS_PREFIX"`

	// Addr is the dev server listen address.
	Addr         string `mapstructure:"ADDR"`
	JWTSecret    string `mapstructure:"JWT_SECRET"`
	JWTIssuer    string `mapstructure:"JWT_ISSUER"`
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// BcryptCost is the bcrypt cost factor (4-31).
	BcryptCost   int  `mapstructure:"BCRYPT_COST"`
	SeedDemoUser bool `mapstructure:"SEED_DEMO_USER"`

	// OIDC settings; SSO is enabled when OIDCIssuer is set.
	OIDCIssuer       string `mapstructure:"OIDC_ISSUER"`
	OIDCClientID     string `mapstructure:"OIDC_CLIENT_ID"`
	OIDCClientSecret string `mapstructure:"OIDC_CLIENT_SECRET"`
	OIDCRedirectURL  string `mapstructure:"OIDC_REDIRECT_URL"`

	ShutdownTimeout string `mapstructure:"SHUTDOWN_TIMEOUT"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment. Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // missing .env is fine

	v.AutomaticEnv()

	v.SetDefault("API_BASE_URL", "http://localhost:8000/api/v1")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("STORE_DRIVER", DriverSQLite)
	v.SetDefault("STORE_PATH", "tesnim.db")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_PREFIX", "tesnim:")
	v.SetDefault("ADDR", ":8000")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "tesnim")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("SEED_DEMO_USER", true)
	v.SetDefault("OIDC_ISSUER", "")
	v.SetDefault("OIDC_CLIENT_ID", "")
	v.SetDefault("OIDC_CLIENT_SECRET", "")
	v.SetDefault("OIDC_REDIRECT_URL", "")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings shared by both binaries.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("config: API_BASE_URL must be set")
	}
	switch c.StoreDriver {
	case DriverMemory:
	case DriverSQLite:
		if c.StorePath == "" {
			return errors.New("config: STORE_PATH must be set for the sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL must be set for the postgres driver")
		}
	case DriverRedis:
		if c.RedisAddr == "" {
			return errors.New("config: REDIS_ADDR must be set for the redis driver")
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.BcryptCost == 0 {
		c.BcryptCost = 12
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < 32 {
		return errors.New("config: JWT_SECRET must be at least 32 bytes")
	}
	if c.OIDCIssuer != "" && (c.OIDCClientID == "" || c.OIDCRedirectURL == "") {
		return errors.New("config: OIDC_CLIENT_ID and OIDC_REDIRECT_URL must be set when OIDC_ISSUER is")
	}
	return nil
}

// OIDCEnabled reports whether SSO is configured.
func (c *Config) OIDCEnabled() bool {
	return c.OIDCIssuer != ""
}

// Timeout parses RequestTimeout. Returns 30s if unset or invalid.
func (c *Config) Timeout() time.Duration {
	return parseDuration(c.RequestTimeout, 30*time.Second)
}

// AccessTTL parses JWTAccessTTL. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	return parseDuration(c.JWTAccessTTL, 15*time.Minute)
}

// GracePeriod parses ShutdownTimeout. Returns 10s if unset or invalid.
func (c *Config) GracePeriod() time.Duration {
	return parseDuration(c.ShutdownTimeout, 10*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
