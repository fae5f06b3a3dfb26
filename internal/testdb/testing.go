package testdb

import (
	"context"
	"testing"

	"github.com/phrazzld/newsletter-api/internal/config"
)

// New provisions a database for t and registers its teardown with
// t.Cleanup. Provisioning failures fail the test immediately. Teardown
// failures are only logged.
func New(t testing.TB, base config.DatabaseSettings, opts Options) *Database {
	t.Helper()

	db, err := NewProvisioner(base, opts).Provision(context.Background())
	if err != nil {
		t.Fatalf("failed to provision test database: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Teardown(context.Background()); err != nil {
			t.Logf("test database %s teardown: %v", db.Settings.DatabaseName, err)
		}
	})
	return db
}
