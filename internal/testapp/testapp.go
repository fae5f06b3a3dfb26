// Package testapp launches a complete copy of the service for a test: a
// private database, a server on a random port, and teardown of both when the
// test ends.
package testapp

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/newsletter-api/internal/config"
	"github.com/phrazzld/newsletter-api/internal/platform/logger"
	"github.com/phrazzld/newsletter-api/internal/server"
	"github.com/phrazzld/newsletter-api/internal/testdb"
)

// shutdownTimeout bounds the server shutdown in cleanup.
const shutdownTimeout = 5 * time.Second

// TestApp is a running application bound to its own database.
type TestApp struct {
	// Address is the base URL, e.g. http://127.0.0.1:43817.
	Address string

	// DBConfig describes the private database; its name is unique to the test.
	DBConfig config.DatabaseSettings

	// DB is a pool on the private database for assertions.
	DB *sql.DB

	Server   *server.Server
	Database *testdb.Database
}

// Spawn starts the application for t. Diagnostics are initialised once per
// process from TEST_LOG. Everything Spawn starts is stopped by t.Cleanup.
func Spawn(t testing.TB) *TestApp {
	t.Helper()

	log := logger.InitDiagnostics(logger.TestConfigFromEnv())

	root, err := testdb.FindProjectRoot()
	if err != nil {
		t.Fatalf("failed to locate project root: %v", err)
	}
	settings, err := config.LoadFrom(root)
	if err != nil {
		t.Fatalf("failed to read configuration: %v", err)
	}

	db := testdb.New(t, settings.Database, testdb.Options{Logger: log})

	ln, err := server.Listen("127.0.0.1", 0)
	if err != nil {
		t.Fatalf("failed to bind random port: %v", err)
	}

	srv, err := server.New(ln, db.DB, log.With(slog.String("test", t.Name())))
	if err != nil {
		_ = ln.Close()
		t.Fatalf("failed to build server: %v", err)
	}
	srv.Start()

	// Registered after the database teardown, so it runs first.
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			t.Logf("server shutdown: %v", err)
		}
		if err := srv.Wait(); err != nil {
			t.Logf("server stopped with error: %v", err)
		}
	})

	return &TestApp{
		Address:  srv.URL(),
		DBConfig: db.Settings,
		DB:       db.DB,
		Server:   srv,
		Database: db,
	}
}

// PostSubscriptions sends body as a URL-encoded form to /subscriptions.
func (a *TestApp) PostSubscriptions(t testing.TB, body string) *Response {
	t.Helper()
	return a.do(t, http.MethodPost, "/subscriptions", body)
}

// TryPostSubscriptions is PostSubscriptions for use off the test goroutine.
func (a *TestApp) TryPostSubscriptions(body string) (*Response, error) {
	return fetch(http.MethodPost, a.Address+"/subscriptions", strings.NewReader(body))
}

// HealthCheck requests /health_check.
func (a *TestApp) HealthCheck(t testing.TB) *Response {
	t.Helper()
	return a.do(t, http.MethodGet, "/health_check", "")
}

// Form encodes name and email, omitting empty values.
func Form(name, email string) string {
	v := url.Values{}
	if name != "" {
		v.Set("name", name)
	}
	if email != "" {
		v.Set("email", email)
	}
	return v.Encode()
}

func (a *TestApp) do(t testing.TB, method, path, body string) *Response {
	t.Helper()
	return doRequest(t, method, a.Address+path, strings.NewReader(body))
}
