package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// MigrationTableName records which migrations have been applied.
const MigrationTableName = "schema_migrations"

// Migrations returns the embedded migration files rooted at their directory.
func Migrations() fs.FS {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		// ALLOW-PANIC: the embed pattern above guarantees the directory exists
		panic(fmt.Sprintf("embedded migrations: %v", err))
	}
	return fsys
}

// newProvider builds a goose provider bound to db. Providers hold no global
// state, so concurrent tests can migrate separate databases safely.
func newProvider(db *sql.DB) (*goose.Provider, error) {
	store, err := database.NewStore(database.DialectPostgres, MigrationTableName)
	if err != nil {
		return nil, err
	}
	return goose.NewProvider("", db, Migrations(), goose.WithStore(store))
}

// Migrate applies every pending embedded migration to db in version order.
// The pool is left open; closing it remains the caller's job.
func Migrate(ctx context.Context, db *sql.DB, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}

	provider, err := newProvider(db)
	if err != nil {
		return &MigrationError{Err: err}
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return &MigrationError{Err: err}
	}

	for _, r := range results {
		log.Debug("applied migration",
			slog.Int64("version", r.Source.Version),
			slog.Duration("duration", r.Duration))
	}
	log.Info("database migrations complete", slog.Int("applied", len(results)))
	return nil
}
