//go:build integration

package testdb

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/newsletter-api/internal/config"
	"github.com/phrazzld/newsletter-api/internal/platform/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	stop, err := StartContainerFromEnv(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start postgres container: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	stop()
	os.Exit(code)
}

func loadSettings(t *testing.T) config.DatabaseSettings {
	t.Helper()
	root, err := FindProjectRoot()
	require.NoError(t, err)
	settings, err := config.LoadFrom(root)
	require.NoError(t, err)
	return settings.Database
}

func TestProvisionedDatabaseIsMigrated(t *testing.T) {
	base := loadSettings(t)
	d := New(t, base, Options{})

	var count int
	err := d.DB.QueryRowContext(context.Background(), "SELECT count(*) FROM subscriptions").Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count)

	var versions int
	err = d.DB.QueryRowContext(context.Background(),
		"SELECT count(*) FROM "+postgres.MigrationTableName+" WHERE version_id > 0").Scan(&versions)
	require.NoError(t, err)
	assert.Positive(t, versions)
}

func TestConcurrentProvisioningYieldsDistinctDatabases(t *testing.T) {
	base := loadSettings(t)
	p := NewProvisioner(base, Options{})

	const n = 5
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		dbs  []*Database
		errs []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := p.Provision(context.Background())
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			dbs = append(dbs, d)
		}()
	}
	wg.Wait()

	t.Cleanup(func() {
		for _, d := range dbs {
			_ = d.Teardown(context.Background())
		}
	})
	require.Empty(t, errs)

	names := make(map[string]bool)
	for _, d := range dbs {
		assert.False(t, names[d.Settings.DatabaseName])
		names[d.Settings.DatabaseName] = true
	}
	assert.Len(t, names, n)

	// a row written to one database is invisible from the others
	_, err := dbs[0].DB.ExecContext(context.Background(),
		`INSERT INTO subscriptions (id, email, name, subscribed_at) VALUES (gen_random_uuid(), 'a@b.c', 'a', now())`)
	require.NoError(t, err)
	for _, d := range dbs[1:] {
		var count int
		require.NoError(t, d.DB.QueryRowContext(context.Background(), "SELECT count(*) FROM subscriptions").Scan(&count))
		assert.Zero(t, count)
	}
}

func TestDroppedDatabaseCannotBeReached(t *testing.T) {
	base := loadSettings(t)
	p := NewProvisioner(base, Options{})

	d, err := p.Provision(context.Background())
	require.NoError(t, err)
	settings := d.Settings

	require.NoError(t, d.Teardown(context.Background()))
	assert.Equal(t, Dropped, d.State())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := postgres.Connect(ctx, settings.ConnectionString(), postgres.PoolOptions{})
	assert.Nil(t, db)
	require.Error(t, err)
	assert.True(t, postgres.IsDatabaseMissing(err), "expected database %s to be gone: %v", settings.DatabaseName, err)
}

func TestSuccessiveProvisioningCycles(t *testing.T) {
	base := loadSettings(t)
	p := NewProvisioner(base, Options{})
	ctx := context.Background()

	first, err := p.Provision(ctx)
	require.NoError(t, err)
	_, err = first.DB.ExecContext(ctx,
		`INSERT INTO subscriptions (id, email, name, subscribed_at)
		 VALUES (gen_random_uuid(), 'ursula_le_guin@gmail.com', 'le guin', now())`)
	require.NoError(t, err)
	firstSettings := first.Settings
	require.NoError(t, first.Teardown(ctx))

	second, err := p.Provision(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Teardown(context.Background()) })
	assert.NotEqual(t, firstSettings.DatabaseName, second.Settings.DatabaseName)

	var count int
	require.NoError(t, second.DB.QueryRowContext(ctx, "SELECT count(*) FROM subscriptions").Scan(&count))
	assert.Zero(t, count, "second database must start with an empty subscriptions table")

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	db, err := postgres.Connect(connectCtx, firstSettings.ConnectionString(), postgres.PoolOptions{})
	assert.Nil(t, db)
	require.Error(t, err)
	assert.True(t, postgres.IsDatabaseMissing(err), "expected database %s to be gone: %v", firstSettings.DatabaseName, err)
}
