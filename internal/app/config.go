package app

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/odyssey-erp/odyssey-bff/internal/platform/cache"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"60s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"45s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	FrappeURL       string        `envconfig:"FRAPPE_URL" required:"true"`
	FrappeAPIKey    string        `envconfig:"FRAPPE_API_KEY"`
	FrappeAPISecret string        `envconfig:"FRAPPE_API_SECRET"`
	FrappeTimeout   time.Duration `envconfig:"FRAPPE_TIMEOUT" default:"30s"`
	FrappeListLimit int           `envconfig:"FRAPPE_LIST_LIMIT" default:"5000"`
	FrappeCompany   string        `envconfig:"FRAPPE_COMPANY"`

	RedisAddr      string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword  string        `envconfig:"REDIS_PASSWORD"`
	RedisDB        int           `envconfig:"REDIS_DB" default:"0"`
	ReportCacheTTL time.Duration `envconfig:"REPORT_CACHE_TTL" default:"10m"`
	IdempotencyTTL time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`

	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`

	GotenbergURL string `envconfig:"GOTENBERG_URL" default:"http://127.0.0.1:3000"`

	AgingWarmupCron   string `envconfig:"AGING_WARMUP_CRON" default:"*/30 * * * *"`
	WorkerConcurrency int    `envconfig:"WORKER_CONCURRENCY" default:"5"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.FrappeURL) == "" {
		return errors.New("frappe url must be provided")
	}
	if u, err := url.Parse(c.FrappeURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid FRAPPE_URL %q", c.FrappeURL)
	}
	if (c.FrappeAPIKey == "") != (c.FrappeAPISecret == "") {
		return errors.New("FRAPPE_API_KEY and FRAPPE_API_SECRET must be set together")
	}
	if c.FrappeListLimit <= 0 {
		return errors.New("FRAPPE_LIST_LIMIT must be positive")
	}
	if c.RateLimitPerMinute <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be positive")
	}
	switch c.LogFormat {
	case "pretty", "json":
	default:
		return fmt.Errorf("unsupported LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}

// RedisOptions returns the shared Redis connection settings.
func (c *Config) RedisOptions() cache.Options {
	return cache.Options{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB}
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
