package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// TenantsFile points at the administrator-managed JSON list of
	// companies and their database connection parameters.
	TenantsFile string `envconfig:"TENANTS_FILE" default:"tenants.json"`

	DBMaxConns       int32         `envconfig:"DB_MAX_CONNS" default:"10"`
	DBConnectTimeout time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"5s"`
	DBAcquireTimeout time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"5s"`
	DBIdleTimeout    time.Duration `envconfig:"DB_IDLE_TIMEOUT" default:"5m"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`

	// SequenceLocking serializes document numbering per company, document
	// type and financial year through a redis lock instead of relying on
	// the unique-index retry alone.
	SequenceLocking bool `envconfig:"SEQUENCE_LOCKING" default:"false"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.TenantsFile == "" {
		return nil, errors.New("tenants file must be provided")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
