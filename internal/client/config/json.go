package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/medisync/internal/flagx"
	"github.com/dmitrijs2005/medisync/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent keys
// stay nil and leave the corresponding Config field alone.
type JsonConfig struct {
	APIBaseURL          *string         `json:"api_base_url"`
	DatabasePath        *string         `json:"database_path"`
	HTTPTimeout         *timex.Duration `json:"http_timeout"`
	RateLimit           *float64        `json:"rate_limit"`
	RateBurst           *int            `json:"rate_burst"`
	SingleFlightRefresh *bool           `json:"single_flight_refresh"`
	TokenPassphrase     *string         `json:"token_passphrase"`
	LogLevel            *string         `json:"log_level"`
	LogFormat           *string         `json:"log_format"`
	MetricsAddr         *string         `json:"metrics_addr"`
	OTelEndpoint        *string         `json:"otel_endpoint"`
}

// parseJSON overlays cfg with the file named by -c, -config or --config.
// Without such a flag it does nothing.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	set(&cfg.APIBaseURL, jc.APIBaseURL)
	set(&cfg.DatabasePath, jc.DatabasePath)
	set(&cfg.RateLimit, jc.RateLimit)
	set(&cfg.RateBurst, jc.RateBurst)
	set(&cfg.SingleFlightRefresh, jc.SingleFlightRefresh)
	set(&cfg.TokenPassphrase, jc.TokenPassphrase)
	set(&cfg.LogLevel, jc.LogLevel)
	set(&cfg.LogFormat, jc.LogFormat)
	set(&cfg.MetricsAddr, jc.MetricsAddr)
	set(&cfg.OTelEndpoint, jc.OTelEndpoint)
	if jc.HTTPTimeout != nil {
		cfg.HTTPTimeout = jc.HTTPTimeout.Duration
	}
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
