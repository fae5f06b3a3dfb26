package server

import (
	"errors"
	"fmt"
)

// ErrNilDependency is returned by New when a required dependency is missing.
var ErrNilDependency = errors.New("nil dependency")

// BindError is returned when the listen address cannot be bound, for example
// because it is already in use.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}
