// Package testdb provisions a private, fully migrated PostgreSQL database
// for a single test and removes it afterwards.
//
// Every provisioned database gets a fresh name of the form test_<32 hex>,
// so tests that run in parallel never share schema or rows. A provisioning
// run moves through a fixed sequence of states:
//
//	Unconfigured -> NameAssigned -> Created -> Migrated -> PoolReady -> Closed -> Dropped
//
// Use New from a test to provision and register teardown in one call:
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.New(t, settings.Database, testdb.Options{})
//	    // db.DB is a pool connected to the new database
//	}
//
// Teardown runs through t.Cleanup, for passing and failing tests alike, and
// never changes the outcome of the test.
package testdb
