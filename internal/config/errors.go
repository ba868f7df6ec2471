package config

import "errors"

// Errors returned by Load and Validate; match them with errors.Is.
var (
	// ErrInvalidConfig marks a value that failed validation.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a source (.env, YAML file, environment) that
	// could not be read.
	ErrLoadConfig = errors.New("load config failed")
)
