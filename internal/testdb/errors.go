package testdb

import "fmt"

// ProvisionError reports the step at which provisioning failed. Step is the
// state that could not be reached.
type ProvisionError struct {
	Database string
	Step     State
	Err      error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("provision test database %q: %s: %v", e.Database, e.Step, e.Err)
}

func (e *ProvisionError) Unwrap() error {
	return e.Err
}
