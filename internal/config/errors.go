package config

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no configuration file exists in the searched
// directory.
var ErrNotFound = errors.New("configuration file not found")

// ConfigError describes a failure to load or validate configuration.
type ConfigError struct {
	Op   string // read, decode or validate
	Path string // directory that was searched
	Err  error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config %s (%s): %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}
