package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,       default=8080"`
	Env      string `env:"ENV,        default=development"`
	LogLevel string `env:"LOG_LEVEL,  default=info"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type AuthConfig struct {
	// The two signing secrets must differ: a refresh token must never
	// verify as an access token. Neither has a default; see Validate.
	JWTSecret        string `env:"JWT_SECRET"`
	JWTRefreshSecret string `env:"JWT_REFRESH_SECRET"`

	// Compact lifetime strings, e.g. "45s", "30m", "24h", "7d".
	AccessExpiresIn  string `env:"JWT_EXPIRES_IN,         default=24h"`
	RefreshExpiresIn string `env:"JWT_REFRESH_EXPIRES_IN, default=7d"`

	BcryptCost           int `env:"BCRYPT_COST,            default=10"`
	MaxLoginAttempts     int `env:"MAX_LOGIN_ATTEMPTS,     default=5"`
	LockoutWindowMinutes int `env:"LOCKOUT_WINDOW_MINUTES, default=15"`
}

// LockoutWindow returns the lockout window as a duration.
func (a AuthConfig) LockoutWindow() time.Duration {
	return time.Duration(a.LockoutWindowMinutes) * time.Minute
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=pharmacy_system"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate enforces the production posture: signing secrets must come from
// the environment, never from a repository-visible default.
func (c *Config) Validate() error {
	if c.Env != "production" {
		return nil
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET is required in production")
	}
	if c.Auth.JWTRefreshSecret == "" {
		return fmt.Errorf("config: JWT_REFRESH_SECRET is required in production")
	}
	if c.Auth.JWTSecret == c.Auth.JWTRefreshSecret {
		return fmt.Errorf("config: JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}
	return nil
}
