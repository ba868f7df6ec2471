// Package config defines client configuration structures and loading hooks.
//
// Conventions:
//   - New() returns a Config holding every default.
//   - Load layers defaults, an optional .env file, an optional YAML file and
//     NODO_* environment variables, in that order.
package config

import (
	"os"
	"path/filepath"
)

// DefaultBackendURL is used when nothing overrides backend_url.
const DefaultBackendURL = "http://localhost:8000"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches log output to JSON lines.
	LogJSON bool `koanf:"log_json"`

	// BackendURL is the base URL of the NODO REST API.
	BackendURL string `koanf:"backend_url"`

	// SessionFile is where the auth token is persisted between runs.
	SessionFile string `koanf:"session_file"`

	// MetricsAddr, when set, serves Prometheus metrics at /metrics, e.g. "127.0.0.1:9464".
	MetricsAddr string `koanf:"metrics_addr"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		BackendURL:  DefaultBackendURL,
		SessionFile: defaultSessionFile(),
	}
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".nodo", "session.yaml")
	}
	return filepath.Join(home, ".nodo", "session.yaml")
}
