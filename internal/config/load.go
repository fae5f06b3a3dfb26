package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	// FileName is the base name of the configuration file. Any extension
	// supported by viper is accepted; the repository ships a YAML file.
	FileName = "configuration"

	// EnvPrefix prefixes environment variables that override file values,
	// e.g. APP_DATABASE_HOST or APP_APPLICATION_PORT.
	EnvPrefix = "APP"
)

// Load reads configuration from the "configuration" file in the current
// working directory, applying defaults and environment overrides.
// Environment variables take precedence over values from the file.
func Load() (*Settings, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, &ConfigError{Op: "read", Err: err}
	}
	return LoadFrom(dir)
}

// LoadFrom reads configuration from the "configuration" file in dir.
// Returns a populated Settings or a *ConfigError if the file is missing,
// malformed, has fields of the wrong type, or fails validation.
func LoadFrom(dir string) (*Settings, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName(FileName)
	v.AddConfigPath(dir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil, &ConfigError{Op: "read", Path: dir, Err: fmt.Errorf("%w: %v", ErrNotFound, err)}
		}
		return nil, &ConfigError{Op: "read", Path: dir, Err: err}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, &ConfigError{Op: "decode", Path: dir, Err: err}
	}

	if err := validator.New().Struct(&settings); err != nil {
		return nil, &ConfigError{Op: "validate", Path: dir, Err: fmt.Errorf("validation failed: %w", err)}
	}

	return &settings, nil
}

// setDefaults registers every known key so that AutomaticEnv can override
// keys the file omits.
func setDefaults(v *viper.Viper) {
	v.SetDefault("application_host", "127.0.0.1")
	v.SetDefault("application_port", 8000)
	v.SetDefault("log_level", "info")

	v.SetDefault("database.username", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database_name", "")
	v.SetDefault("database.require_ssl", false)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.connect_timeout", "0s")
}
