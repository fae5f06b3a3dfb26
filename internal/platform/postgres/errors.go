package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/newsletter-api/internal/redact"
	"github.com/phrazzld/newsletter-api/internal/store"
)

// PostgreSQL error codes
const (
	// uniqueViolationCode is the PostgreSQL error code for unique constraint violations
	uniqueViolationCode = "23505"

	// checkViolationCode is the PostgreSQL error code for check constraint violations
	checkViolationCode = "23514"

	// notNullViolationCode is the PostgreSQL error code for not null violations
	notNullViolationCode = "23502"

	// invalidCatalogNameCode is returned when connecting to a database that does not exist
	invalidCatalogNameCode = "3D000"

	// duplicateDatabaseCode is returned by CREATE DATABASE when the name is taken
	duplicateDatabaseCode = "42P04"
)

// ConnectError is returned when a database cannot be opened or does not
// answer a ping. Target is the redacted connection string.
type ConnectError struct {
	Target string
	Err    error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect to %s: %s", e.Target, redact.Error(e.Err))
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// MigrationError is returned when the embedded schema could not be applied.
type MigrationError struct {
	Err error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("apply migrations: %v", e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

// MapError maps a database error to an appropriate store error.
// It wraps the original error to preserve context.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
		case checkViolationCode:
			return fmt.Errorf(
				"%w: check constraint violation (%s): %v",
				store.ErrInvalidEntity,
				pgErr.ConstraintName,
				err,
			)
		case notNullViolationCode:
			return fmt.Errorf(
				"%w: not null violation (%s): %v",
				store.ErrInvalidEntity,
				pgErr.ColumnName,
				err,
			)
		}
	}

	return err
}

// IsUniqueViolation checks if the given error is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	return hasCode(err, uniqueViolationCode)
}

// IsDatabaseMissing reports whether err says the target database does not exist.
func IsDatabaseMissing(err error) bool {
	return hasCode(err, invalidCatalogNameCode)
}

// IsDuplicateDatabase reports whether err came from creating a database
// whose name is already taken.
func IsDuplicateDatabase(err error) bool {
	return hasCode(err, duplicateDatabaseCode)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
