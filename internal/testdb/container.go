package testdb

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/phrazzld/newsletter-api/internal/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// ContainerEnvVar asks integration TestMains to start a disposable server
// instead of using the one named in the configuration file.
const ContainerEnvVar = "TEST_POSTGRES_CONTAINER"

// ContainerImage is the PostgreSQL image started by StartPostgresContainer.
const ContainerImage = "postgres:16-alpine"

// Container is a running disposable PostgreSQL server.
type Container struct {
	// Settings points base at the container's host and mapped port.
	Settings config.DatabaseSettings

	container *postgres.PostgresContainer
}

// Terminate stops and removes the container.
func (c *Container) Terminate(ctx context.Context) error {
	return c.container.Terminate(ctx)
}

// StartPostgresContainer starts a PostgreSQL server with base's credentials
// and returns settings that reach it.
func StartPostgresContainer(ctx context.Context, base config.DatabaseSettings) (*Container, error) {
	pg, err := postgres.Run(ctx,
		ContainerImage,
		postgres.WithDatabase(base.DatabaseName),
		postgres.WithUsername(base.Username),
		postgres.WithPassword(base.Password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}

	host, err := pg.Host(ctx)
	if err != nil {
		_ = pg.Terminate(ctx)
		return nil, fmt.Errorf("postgres container host: %w", err)
	}
	port, err := pg.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = pg.Terminate(ctx)
		return nil, fmt.Errorf("postgres container port: %w", err)
	}

	settings := base
	settings.Host = host
	settings.Port = uint16(port.Int())
	settings.RequireSSL = false

	return &Container{Settings: settings, container: pg}, nil
}

// EnvOverrides returns the APP_ variables that point configuration loading
// at the container.
func (c *Container) EnvOverrides() map[string]string {
	return map[string]string{
		"APP_DATABASE_HOST":        c.Settings.Host,
		"APP_DATABASE_PORT":        strconv.Itoa(int(c.Settings.Port)),
		"APP_DATABASE_USERNAME":    c.Settings.Username,
		"APP_DATABASE_PASSWORD":    c.Settings.Password,
		"APP_DATABASE_REQUIRE_SSL": "false",
	}
}

// StartContainerFromEnv starts a container when TEST_POSTGRES_CONTAINER is
// set and exports its address through APP_ variables, so later calls to
// config.LoadFrom reach it. It is meant for TestMain. The returned stop
// function is never nil.
func StartContainerFromEnv(ctx context.Context) (stop func(), err error) {
	stop = func() {}
	if os.Getenv(ContainerEnvVar) == "" {
		return stop, nil
	}

	root, err := FindProjectRoot()
	if err != nil {
		return stop, err
	}
	settings, err := config.LoadFrom(root)
	if err != nil {
		return stop, err
	}

	c, err := StartPostgresContainer(ctx, settings.Database)
	if err != nil {
		return stop, err
	}
	for k, v := range c.EnvOverrides() {
		if err := os.Setenv(k, v); err != nil {
			_ = c.Terminate(ctx)
			return stop, err
		}
	}

	return func() {
		if err := c.Terminate(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "failed to terminate postgres container: %v\n", err)
		}
	}, nil
}
