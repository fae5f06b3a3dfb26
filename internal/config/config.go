package config

import (
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"time"
)

// Settings holds all application configuration.
type Settings struct {
	Database        DatabaseSettings `mapstructure:"database"         validate:"required"`
	ApplicationHost string           `mapstructure:"application_host" validate:"required"`
	ApplicationPort uint16           `mapstructure:"application_port"`
	LogLevel        string           `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
}

// DatabaseSettings contains the PostgreSQL server address, credentials, the
// database to use, and connection pool tuning.
type DatabaseSettings struct {
	Username     string `mapstructure:"username"      validate:"required"`
	Password     string `mapstructure:"password"`
	Host         string `mapstructure:"host"          validate:"required"`
	Port         uint16 `mapstructure:"port"          validate:"required"`
	DatabaseName string `mapstructure:"database_name" validate:"required"`
	RequireSSL   bool   `mapstructure:"require_ssl"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"    validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
	// ConnectTimeout bounds the initial ping. Zero means no timeout.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" validate:"gte=0"`
}

// ConnectionString returns a URL addressing the configured database.
func (s DatabaseSettings) ConnectionString() string {
	u := s.serverURL()
	u.Path = "/" + s.DatabaseName
	return u.String()
}

// ConnectionStringDefault returns a URL addressing the server without
// selecting a database. It is only meant for administrative statements such
// as CREATE DATABASE and DROP DATABASE.
func (s DatabaseSettings) ConnectionStringDefault() string {
	u := s.serverURL()
	return u.String()
}

// WithDatabaseName returns a copy of the settings pointing at another database
// on the same server.
func (s DatabaseSettings) WithDatabaseName(name string) DatabaseSettings {
	s.DatabaseName = name
	return s
}

// LogValue implements slog.LogValuer so that credentials never reach the logs.
func (s DatabaseSettings) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("host", s.Host),
		slog.Int("port", int(s.Port)),
		slog.String("username", s.Username),
		slog.String("database_name", s.DatabaseName),
		slog.Bool("require_ssl", s.RequireSSL),
	)
}

func (s DatabaseSettings) serverURL() *url.URL {
	sslMode := "disable"
	if s.RequireSSL {
		sslMode = "require"
	}

	return &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(s.Username, s.Password),
		Host:     net.JoinHostPort(s.Host, strconv.Itoa(int(s.Port))),
		RawQuery: url.Values{"sslmode": []string{sslMode}}.Encode(),
	}
}

// Address returns the host:port the HTTP server should bind to.
func (s Settings) Address() string {
	return net.JoinHostPort(s.ApplicationHost, strconv.Itoa(int(s.ApplicationPort)))
}
