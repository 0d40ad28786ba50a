// Package config provides configuration management for the Clipdex Agent.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	// Default values
	DefaultPort                = 8789
	DefaultLogLevel            = "info"
	DefaultBackfillConcurrency = 2

	// Environment variable names
	EnvPort                = "CLIPDEX_PORT"
	EnvLogLevel            = "CLIPDEX_LOG_LEVEL"
	EnvLibraryRoot         = "CLIPDEX_LIBRARY_ROOT"
	EnvBackfill            = "CLIPDEX_BACKFILL"
	EnvBackfillConcurrency = "CLIPDEX_BACKFILL_CONCURRENCY"
)

// LibraryRootCandidates are the conventional relative locations probed, in
// order, when no explicit library root is configured. The first existing
// directory wins.
var LibraryRootCandidates = []string{
	"library",
	"output",
	"pipeline/output",
}

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	LibraryRoot() string
	BackfillEnabled() bool
	BackfillConcurrency() int
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port                int
	logLevel            string
	libraryRoot         string
	backfillEnabled     bool
	backfillConcurrency int
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:                DefaultPort,
		logLevel:            DefaultLogLevel,
		backfillEnabled:     true,
		backfillConcurrency: DefaultBackfillConcurrency,
	}

	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	// Override log level from environment
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	// Optional explicit library root; when empty, the library resolver probes
	// LibraryRootCandidates instead.
	cfg.libraryRoot = os.Getenv(EnvLibraryRoot)

	if bf := os.Getenv(EnvBackfill); bf != "" {
		enabled, err := strconv.ParseBool(bf)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvBackfill, err)
		}
		cfg.backfillEnabled = enabled
	}

	if bc := os.Getenv(EnvBackfillConcurrency); bc != "" {
		n, err := strconv.Atoi(bc)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid %s: must be a positive integer", EnvBackfillConcurrency)
		}
		cfg.backfillConcurrency = n
	}

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// LibraryRoot returns the explicitly configured library root, or "" when the
// conventional candidates should be probed.
func (c *EnvConfig) LibraryRoot() string {
	return c.libraryRoot
}

// BackfillEnabled reports whether the startup source-video backfill runs.
func (c *EnvConfig) BackfillEnabled() bool {
	return c.backfillEnabled
}

// BackfillConcurrency returns the number of projects backfilled in parallel.
func (c *EnvConfig) BackfillConcurrency() int {
	return c.backfillConcurrency
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
