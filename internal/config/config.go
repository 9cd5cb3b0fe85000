// Package config provides centralized configuration management for the
// importer. It loads settings from environment variables with sensible
// defaults and validates the result on startup to fail fast on
// misconfiguration.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all importer configuration.
// All settings can be configured via environment variables; command-line
// flags override the corresponding values.
type Config struct {
	API      APIConfig
	Validation ValidateConfig
	Report   ReportConfig
	Logging  LoggingConfig
}

// APIConfig holds DKAN API client settings.
type APIConfig struct {
	// BaseURL is the DKAN site to import into. Usually supplied per run via
	// the --base-url flag.
	BaseURL string `env:"DKAN_BASE_URL"`

	// Timeout is the per-request HTTP timeout (default: 30s)
	Timeout time.Duration `env:"DKAN_HTTP_TIMEOUT" default:"30s"`

	// Retries is how many times transient read failures are retried (default: 2)
	Retries int `env:"DKAN_HTTP_RETRIES" default:"2"`

	// Username for basic auth. The --username flag takes precedence.
	Username string `env:"DKAN_USERNAME"`

	// Password for basic auth. Prefer the interactive prompt; this exists
	// for non-interactive runs.
	Password string `env:"DKAN_PASSWORD"`
}

// ValidateConfig holds row validation settings.
type ValidateConfig struct {
	// Workers is the number of parallel row validations (default: 1,
	// sequential). Results are identical regardless of the value.
	Workers int `env:"VALIDATE_WORKERS" default:"1"`
}

// ReportConfig holds error reporting settings.
type ReportConfig struct {
	// LogFile is where validation error reports are appended (default: errors.log)
	LogFile string `env:"REPORT_LOG_FILE" default:"errors.log"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Validate checks that the configuration is coherent.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if c.API.BaseURL != "" && !strings.HasPrefix(c.API.BaseURL, "https://") {
		errs = append(errs, fmt.Sprintf("DKAN_BASE_URL (%q) must use https", c.API.BaseURL))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, "DKAN_HTTP_TIMEOUT must be positive")
	}
	if c.API.Retries < 0 {
		errs = append(errs, "DKAN_HTTP_RETRIES must not be negative")
	}
	if c.Validation.Workers <= 0 {
		errs = append(errs, "VALIDATE_WORKERS must be positive")
	}
	if c.Report.LogFile == "" {
		errs = append(errs, "REPORT_LOG_FILE must not be empty")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be debug, info, warn, or error", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be text or json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
