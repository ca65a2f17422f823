package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the gateway.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// StorefrontURL is the base URL of the remote Trinity API the gateway
	// fronts. Everything durable lives behind it.
	StorefrontURL     string        `envconfig:"STOREFRONT_URL" default:"http://127.0.0.1:3000/api"`
	StorefrontTimeout time.Duration `envconfig:"STOREFRONT_TIMEOUT" default:"30s"`

	// StorefrontServiceToken authenticates the background stats warmup.
	// Leave empty to disable the warmup job.
	StorefrontServiceToken string `envconfig:"STOREFRONT_SERVICE_TOKEN"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"12h"`

	StatsCacheTTL time.Duration `envconfig:"STATS_CACHE_TTL" default:"60s"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret must be provided")
	}
	if cfg.StorefrontURL == "" {
		return nil, errors.New("storefront url must be provided")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
