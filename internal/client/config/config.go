package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "MEDISYNC_"

// Config holds runtime settings for the medisync CLI.
type Config struct {
	// APIBaseURL is the root of the REST API; endpoint paths are resolved
	// against it.
	APIBaseURL   string `env:"API_BASE_URL"`
	DatabasePath string `env:"DATABASE_PATH"`
	// HTTPTimeout bounds one HTTP exchange, including the refresh call.
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT"`
	// RateLimit caps outgoing calls per second; 0 disables the limiter.
	RateLimit           float64 `env:"RATE_LIMIT"`
	RateBurst           int     `env:"RATE_BURST"`
	SingleFlightRefresh bool    `env:"SINGLE_FLIGHT_REFRESH"`
	// TokenPassphrase, when set, seals the stored tokens.
	TokenPassphrase string `env:"TOKEN_PASSPHRASE"`
	LogLevel        string `env:"LOG_LEVEL"`
	LogFormat       string `env:"LOG_FORMAT"`
	// MetricsAddr enables the Prometheus listener, e.g. "127.0.0.1:9464".
	MetricsAddr string `env:"METRICS_ADDR"`
	// OTelEndpoint enables OTLP/HTTP trace export, e.g. "localhost:4318".
	OTelEndpoint string `env:"OTEL_ENDPOINT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000/api/"
	c.DatabasePath = "medisync.db"
	c.HTTPTimeout = 15 * time.Second
	c.RateLimit = 0
	c.RateBurst = 1
	c.SingleFlightRefresh = true
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// LoadConfig builds a Config from defaults, then the JSON file named by
// -c/-config, then MEDISYNC_* environment variables, then flags. Later
// sources take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return fmt.Errorf("api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api base url %q: scheme must be http or https", c.APIBaseURL)
	}
	if c.DatabasePath == "" {
		return errors.New("database path is required")
	}
	if c.HTTPTimeout < 0 {
		return errors.New("http timeout must not be negative")
	}
	if c.RateLimit < 0 {
		return errors.New("rate limit must not be negative")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log format %q: want text or json", c.LogFormat)
	}
	return nil
}
