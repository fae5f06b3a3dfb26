package testdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/phrazzld/newsletter-api/internal/config"
	"github.com/phrazzld/newsletter-api/internal/platform/postgres"
	"github.com/phrazzld/newsletter-api/internal/redact"
)

// NamePrefix starts every generated database name.
const NamePrefix = "test_"

// OpenFunc opens a pool for dsn.
type OpenFunc func(ctx context.Context, dsn string) (*sql.DB, error)

// MigrateFunc brings the schema of db up to date.
type MigrateFunc func(ctx context.Context, db *sql.DB) error

// Options customises a Provisioner. The zero value uses postgres.Connect,
// postgres.Migrate, random names and no step timeout.
type Options struct {
	// NameFunc returns the database name for each run.
	NameFunc func() string

	// Open opens both the administrative and the per-test pools.
	Open OpenFunc

	// Migrate applies the schema to the freshly created database.
	Migrate MigrateFunc

	Logger *slog.Logger

	// StepTimeout bounds each step. Zero means a step waits as long as ctx allows.
	StepTimeout time.Duration
}

// GenerateName returns test_ followed by the 32 hex digits of a random UUID.
func GenerateName() string {
	return NamePrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Provisioner creates migrated databases on the server described by its base
// settings. It holds no per-run state and is safe for concurrent use.
type Provisioner struct {
	base config.DatabaseSettings
	opts Options
}

// NewProvisioner returns a Provisioner for the server in base. The database
// name in base is ignored; every run picks its own.
func NewProvisioner(base config.DatabaseSettings, opts Options) *Provisioner {
	if opts.NameFunc == nil {
		opts.NameFunc = GenerateName
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Open == nil {
		poolOpts := postgres.PoolOptionsFrom(base)
		opts.Open = func(ctx context.Context, dsn string) (*sql.DB, error) {
			return postgres.Connect(ctx, dsn, poolOpts)
		}
	}
	if opts.Migrate == nil {
		log := opts.Logger
		opts.Migrate = func(ctx context.Context, db *sql.DB) error {
			return postgres.Migrate(ctx, db, log)
		}
	}
	return &Provisioner{base: base, opts: opts}
}

// Database is one provisioned database and its pool.
type Database struct {
	Settings config.DatabaseSettings
	DB       *sql.DB

	p     *Provisioner
	log   *slog.Logger
	mu    sync.Mutex
	state State
}

// State returns the current lifecycle state.
func (d *Database) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Database) setState(s State) {
	d.mu.Lock()
	d.state = s
	d.mu.Unlock()
	d.log.Debug("test database state changed", slog.String("state", s.String()))
}

// Provision creates a uniquely named database, migrates it and opens a pool
// to it. Creation is not retried. If a later step fails the database is
// dropped again on a best-effort basis before the error is returned.
func (p *Provisioner) Provision(ctx context.Context) (*Database, error) {
	name := p.opts.NameFunc()
	d := &Database{
		Settings: p.base.WithDatabaseName(name),
		p:        p,
		log:      p.opts.Logger.With(slog.String("database", name)),
	}
	d.setState(NameAssigned)

	if err := p.create(ctx, d); err != nil {
		return nil, &ProvisionError{Database: name, Step: Created, Err: err}
	}
	d.setState(Created)

	pool, step, err := p.openAndMigrate(ctx, d)
	if err != nil {
		if pool != nil {
			_ = pool.Close()
		}
		if dropErr := d.Drop(context.WithoutCancel(ctx)); dropErr != nil {
			d.log.Warn("failed to drop test database after provisioning error",
				slog.String("error", redact.Error(dropErr)))
		}
		return nil, &ProvisionError{Database: name, Step: step, Err: err}
	}

	d.DB = pool
	d.setState(PoolReady)
	return d, nil
}

func (p *Provisioner) create(ctx context.Context, d *Database) error {
	ctx, cancel := p.stepContext(ctx)
	defer cancel()

	admin, err := p.opts.Open(ctx, d.Settings.ConnectionStringDefault())
	if err != nil {
		return err
	}
	defer func() { _ = admin.Close() }()

	if _, err := admin.ExecContext(ctx, "CREATE DATABASE "+quoteIdent(d.Settings.DatabaseName)); err != nil {
		if postgres.IsDuplicateDatabase(err) {
			return fmt.Errorf("database name already in use: %w", err)
		}
		return err
	}
	return nil
}

// openAndMigrate returns the step that failed alongside any error.
func (p *Provisioner) openAndMigrate(ctx context.Context, d *Database) (*sql.DB, State, error) {
	ctx, cancel := p.stepContext(ctx)
	defer cancel()

	pool, err := p.opts.Open(ctx, d.Settings.ConnectionString())
	if err != nil {
		return nil, Migrated, err
	}
	if err := p.opts.Migrate(ctx, pool); err != nil {
		return pool, Migrated, err
	}
	d.setState(Migrated)
	return pool, PoolReady, nil
}

func (p *Provisioner) stepContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.opts.StepTimeout > 0 {
		return context.WithTimeout(ctx, p.opts.StepTimeout)
	}
	return context.WithCancel(ctx)
}

// Close closes the pool. It is safe to call more than once.
func (d *Database) Close() error {
	d.mu.Lock()
	db := d.DB
	d.DB = nil
	d.mu.Unlock()

	var err error
	if db != nil {
		err = db.Close()
	}
	if d.State() < Closed {
		d.setState(Closed)
	}
	return err
}

// Drop removes the database from the server. Sessions still connected to it
// are terminated first so the drop is not blocked. Dropping a database that
// is already gone is not an error.
func (d *Database) Drop(ctx context.Context) error {
	ctx, cancel := d.p.stepContext(ctx)
	defer cancel()

	admin, err := d.p.opts.Open(ctx, d.Settings.ConnectionStringDefault())
	if err != nil {
		return fmt.Errorf("drop %s: %w", d.Settings.DatabaseName, err)
	}
	defer func() { _ = admin.Close() }()

	if _, err := admin.ExecContext(ctx,
		`SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = $1 AND pid <> pg_backend_pid()`,
		d.Settings.DatabaseName,
	); err != nil {
		d.log.Debug("could not terminate sessions before drop",
			slog.String("error", redact.Error(err)))
	}

	if _, err := admin.ExecContext(ctx, "DROP DATABASE IF EXISTS "+quoteIdent(d.Settings.DatabaseName)); err != nil {
		return fmt.Errorf("drop %s: %w", d.Settings.DatabaseName, err)
	}

	d.setState(Dropped)
	return nil
}

// Teardown closes the pool and drops the database. Both steps always run;
// their errors are joined.
func (d *Database) Teardown(ctx context.Context) error {
	return errors.Join(d.Close(), d.Drop(ctx))
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}
