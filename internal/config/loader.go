package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables that steer loading itself.
const (
	envPrefix     = "NODO_"
	envConfigFile = "NODO_CONFIG"
	envEnvFile    = "NODO_ENV_FILE"
	defaultEnvDot = ".env"
)

// Load builds a Config by layering defaults, .env, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. .env file: NODO_ENV_FILE if set, otherwise ./.env when present.
//     Variables already set in the process environment win over .env.
//  3. file (YAML) if NODO_CONFIG is set
//  4. env (prefix NODO_), e.g. NODO_BACKEND_URL
func Load(ctx context.Context) (*Config, error) {
	_ = ctx

	if err := loadDotEnv(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	base := New()
	k := koanf.New(".")

	if path := os.Getenv(envConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// NODO_BACKEND_URL -> backend_url. Underscores are kept so keys stay flat
	// and match the koanf tags on the struct.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv() error {
	if path := os.Getenv(envEnvFile); path != "" {
		return godotenv.Load(path)
	}
	if _, err := os.Stat(defaultEnvDot); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return godotenv.Load(defaultEnvDot)
}

// Validate checks the config and normalizes BackendURL (no trailing slash).
func (c *Config) Validate() error {
	raw := strings.TrimSpace(c.BackendURL)
	if raw == "" {
		return fmt.Errorf("%w: backend_url must not be empty", ErrInvalidConfig)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: backend_url: %w", ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: backend_url must use http or https, got %q", ErrInvalidConfig, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: backend_url must include a host", ErrInvalidConfig)
	}
	c.BackendURL = strings.TrimRight(raw, "/")

	if strings.TrimSpace(c.SessionFile) == "" {
		return fmt.Errorf("%w: session_file must not be empty", ErrInvalidConfig)
	}
	return nil
}
