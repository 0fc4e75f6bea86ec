// Package config manages environment variables.
//
// It reads variables from the process environment (optionally seeded
// from a `.env` file), loads them into structured Go types, and
// validates that required values are present so the store fails fast
// on bad or missing configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists it is loaded into the
	// process env before any variable is read. No explicit call needed.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix every environment variable consumed by this
// module must carry, e.g. USERS_STORE_POSTGRES_HOST.
const EnvPrefix = "USERS_STORE_"

// Config is the root configuration object for the store.
//
// The `koanf:"..."` tags name the env-derived keys values are mapped
// from. The `validate:"required"` tags enforce that the connection
// parameters are present: there are no defaults for any of them.
type Config struct {
	// Env selects the runtime environment. "local" additionally enables
	// SQL query logging on every connection.
	Env string `koanf:"env"`

	Postgres PostgresConfig `koanf:"postgres" validate:"required"`
}

// PostgresConfig contains the PostgreSQL connection parameters.
type PostgresConfig struct {
	Host     string `koanf:"host" validate:"required"`
	Port     int    `koanf:"port" validate:"required"`
	DB       string `koanf:"db" validate:"required"`
	User     string `koanf:"user" validate:"required"`
	Password string `koanf:"password" validate:"required"`

	// SSLMode is optional; Load fills in "prefer" when unset.
	SSLMode string `koanf:"ssl_mode"`
}

// Load reads USERS_STORE_-prefixed environment variables, unmarshals
// them into a Config, validates it, and applies defaults.
//
// Key mapping: the prefix is trimmed, the name lowercased, and the
// first underscore becomes the nesting delimiter, so
// USERS_STORE_POSTGRES_HOST maps to postgres.host -> Config.Postgres.Host.
// The POSTGRES_SSL_MODE tail keeps its underscores (ssl_mode).
func Load() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		// Only the leading "postgres_" segment nests; everything after
		// it is a single flat key.
		if rest, ok := strings.CutPrefix(key, "postgres_"); ok {
			return "postgres." + rest
		}
		return key
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Env == "" {
		cfg.Env = "local"
	}
	if cfg.Postgres.SSLMode == "" {
		cfg.Postgres.SSLMode = "prefer"
	}

	return cfg, nil
}
