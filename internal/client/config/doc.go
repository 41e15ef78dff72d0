// Package config loads runtime configuration for the medisync CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c, -config or --config.
//  3. Environment variables prefixed with MEDISYNC_ (caarlos0/env).
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   API base URL
//	-d string   local database path
//	-l string   log level
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "15s" or integer
// nanoseconds:
//
//	{
//	  "api_base_url": "https://medisync.example/api/",
//	  "database_path": "/home/ann/.medisync/client.db",
//	  "http_timeout": "15s",
//	  "rate_limit": 5,
//	  "rate_burst": 10,
//	  "single_flight_refresh": true,
//	  "log_level": "debug",
//	  "log_format": "json",
//	  "metrics_addr": "127.0.0.1:9464"
//	}
//
// # Environment
//
//	MEDISYNC_API_BASE_URL, MEDISYNC_DATABASE_PATH, MEDISYNC_HTTP_TIMEOUT,
//	MEDISYNC_RATE_LIMIT, MEDISYNC_RATE_BURST, MEDISYNC_SINGLE_FLIGHT_REFRESH,
//	MEDISYNC_TOKEN_PASSPHRASE, MEDISYNC_LOG_LEVEL, MEDISYNC_LOG_FORMAT,
//	MEDISYNC_METRICS_ADDR, MEDISYNC_OTEL_ENDPOINT
package config
