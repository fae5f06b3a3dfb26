// Package main implements the entry point for the newsletter API server,
// which accepts subscriptions and stores them in PostgreSQL.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/newsletter-api/internal/config"
	"github.com/phrazzld/newsletter-api/internal/platform/logger"
	"github.com/phrazzld/newsletter-api/internal/platform/postgres"
	"github.com/phrazzld/newsletter-api/internal/redact"
	"github.com/phrazzld/newsletter-api/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "newsletter-api: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// run loads configuration, connects to the database and serves until ctx is
// cancelled. Any startup failure is returned with credentials masked.
func run(ctx context.Context, args []string, stdout io.Writer) (err error) {
	defer func() { err = redact.Wrap(err) }()

	fs := flag.NewFlagSet("newsletter-api", flag.ContinueOnError)
	configDir := fs.String("config-dir", ".", "directory containing the configuration file")
	migrate := fs.Bool("migrate", false, "apply database migrations before serving")
	if err := fs.Parse(args); err != nil {
		return err
	}

	settings, err := config.LoadFrom(*configDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(logger.LoggerConfig{Level: settings.LogLevel, Output: stdout})
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("configuration loaded", slog.Any("settings", settings.Database),
		slog.String("address", settings.Address()))

	db, err := postgres.Connect(ctx, settings.Database.ConnectionString(),
		postgres.PoolOptionsFrom(settings.Database))
	if err != nil {
		return fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database pool", slog.String("error", err.Error()))
		}
	}()

	if *migrate {
		if err := postgres.Migrate(ctx, db, log); err != nil {
			return err
		}
	}

	ln, err := server.Listen(settings.ApplicationHost, settings.ApplicationPort)
	if err != nil {
		return err
	}

	srv, err := server.New(ln, db, log)
	if err != nil {
		_ = ln.Close()
		return err
	}

	return srv.Run(ctx)
}
