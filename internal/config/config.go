// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
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
	Import   ImportConfig
	Export   ExportConfig
	Search   SearchConfig
	CSV      CSVConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings used by the serve command.
type ServerConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1)
	Host string `env:"SERVER_HOST" default:"127.0.0.1"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 0, exports stream)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 5m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"5m"`

	// MaxUploadSize caps an uploaded import file in bytes (default: 100MB)
	MaxUploadSize int64 `env:"SERVER_MAX_UPLOAD_SIZE" default:"104857600"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// ImportConfig holds CSV import settings.
type ImportConfig struct {
	// BlockSize is the number of records committed together (default: 1000)
	BlockSize int `env:"IMPORT_BLOCK_SIZE" default:"1000"`

	// OnDuplicate is raise, update or ignore (default: ignore)
	OnDuplicate string `env:"IMPORT_ON_DUPLICATE" default:"ignore"`

	// Encoding is the charset of imported files (default: utf-8)
	Encoding string `env:"IMPORT_ENCODING" default:"utf-8"`

	// MaxConcurrent is the maximum number of parallel HTTP imports (default: 2)
	MaxConcurrent int `env:"IMPORT_MAX_CONCURRENT" default:"2"`

	// MaxWaitTime is how long an HTTP import waits for a slot (default: 30s)
	MaxWaitTime time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"30s"`
}

// ExportConfig holds CSV export settings.
type ExportConfig struct {
	// BlockSize is the number of records fetched per page (default: 1000)
	BlockSize int `env:"EXPORT_BLOCK_SIZE" default:"1000"`
}

// SearchConfig holds search settings.
type SearchConfig struct {
	// Limit caps the number of results, 0 for none (default: 0)
	Limit int `env:"SEARCH_LIMIT" default:"0"`

	// DisplayGroup is the number of records printed side by side (default: 3)
	DisplayGroup int `env:"SEARCH_DISPLAY_GROUP" default:"3"`

	// PageSize is the number of results fetched per page (default: 100)
	PageSize int `env:"SEARCH_PAGE_SIZE" default:"100"`
}

// CSVConfig holds CSV dialect settings shared by import and export.
type CSVConfig struct {
	// Delimiter is the single field separator character (default: ",")
	Delimiter string `env:"CSV_DELIMITER" default:","`

	// DateTimeLayout is the Go time layout of the last_updated column
	DateTimeLayout string `env:"CSV_DATETIME_LAYOUT" default:"2006-01-02 15:04"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
