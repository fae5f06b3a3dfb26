package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	// pgx registers itself with database/sql as "pgx"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/phrazzld/newsletter-api/internal/config"
	"github.com/phrazzld/newsletter-api/internal/platform/logger"
	"github.com/phrazzld/newsletter-api/internal/redact"
)

// DriverName is the database/sql driver used for every connection.
const DriverName = "pgx"

// PoolOptions tunes the connection pool. Zero values leave the database/sql
// defaults in place; a zero ConnectTimeout lets the initial ping block until
// the context is done.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
}

// PoolOptionsFrom maps database settings to pool options.
func PoolOptionsFrom(s config.DatabaseSettings) PoolOptions {
	return PoolOptions{
		MaxOpenConns:    s.MaxOpenConns,
		MaxIdleConns:    s.MaxIdleConns,
		ConnMaxLifetime: s.ConnMaxLifetime,
		ConnectTimeout:  s.ConnectTimeout,
	}
}

// Connect opens a pool for dsn, applies opts and verifies the server answers.
// The caller owns the returned pool and must Close it.
func Connect(ctx context.Context, dsn string, opts PoolOptions) (*sql.DB, error) {
	target := redact.ConnectionString(dsn)
	log := logger.FromContextOrDefault(ctx, slog.Default())

	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, &ConnectError{Target: target, Err: err}
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	pingCtx := ctx
	if opts.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, opts.ConnectTimeout)
		defer cancel()
	}

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, &ConnectError{Target: target, Err: err}
	}

	log.Debug("database connection established",
		slog.String("target", target),
		slog.Int("max_open_conns", opts.MaxOpenConns))
	return db, nil
}
