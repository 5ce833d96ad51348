// Package config provides centralized configuration management for the application.
// Runtime settings are loaded from environment variables with defaults and
// validated on startup; the order-list workflow profile is read from an
// optional file (see LoadProfile).
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Build    BuildConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout covers reading the request, uploads included (default: 60s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"60s"`

	// WriteTimeout is the maximum duration for writing the response (default: 3m)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"3m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for non-build requests (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds build-history database settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. Empty disables build history.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 5)
	MaxConns int `env:"DB_MAX_CONNS" default:"5"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// RetentionDays deletes build history older than this; 0 keeps it forever (default: 90)
	RetentionDays int `env:"HISTORY_RETENTION_DAYS" default:"90"`

	// PruneInterval is how often old history is pruned (default: 24h)
	PruneInterval time.Duration `env:"HISTORY_PRUNE_INTERVAL" default:"24h"`
}

// Enabled reports whether a database is configured.
func (c *DatabaseConfig) Enabled() bool { return c.URL != "" }

// BuildConfig holds order-list build settings.
type BuildConfig struct {
	// MaxFileSize is the maximum size of each uploaded spreadsheet in bytes (default: 20MB)
	MaxFileSize int64 `env:"BUILD_MAX_FILE_SIZE" default:"20971520"`

	// MaxConcurrent is the maximum number of builds running at once (default: 4)
	MaxConcurrent int `env:"BUILD_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long a request waits for a build slot (default: 30s)
	MaxWaitTime time.Duration `env:"BUILD_MAX_WAIT_TIME" default:"30s"`

	// Timeout bounds a single build, rendering included (default: 2m)
	Timeout time.Duration `env:"BUILD_TIMEOUT" default:"2m"`

	// ImageFolder holds product pictures named <item code>.<jpg|png|jpeg>.
	// Empty disables picture embedding.
	ImageFolder string `env:"IMAGE_FOLDER"`

	// CSVEncoding is the text encoding of CSV uploads (default: utf-8)
	CSVEncoding string `env:"CSV_ENCODING" default:"utf-8"`

	// ProfilePath points to an optional workflow profile (yaml, json or toml)
	ProfilePath string `env:"PROFILE_PATH"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// BuildLimit is requests per minute for the build endpoint (default: 10)
	BuildLimit int `env:"RATE_LIMIT_BUILD" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey makes every /api route demand an X-API-Key header (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`

	// SeqURL is an optional Seq server receiving a copy of every record
	SeqURL string `env:"LOG_SEQ_URL"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
