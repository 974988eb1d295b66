// Package tools provides shared utilities for clanvault.
package tools

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions.
var (
	ErrInvalidSpec        = errors.New("invalid table spec")
	ErrNoColumns          = errors.New("no columns specified")
	ErrDuplicateColumn    = errors.New("duplicate column")
	ErrInvalidColumnType  = errors.New("invalid column type")
	ErrInvalidConstraint  = errors.New("invalid column constraint")
	ErrUnknownIndexColumn = errors.New("index column is not declared")
	ErrInvalidIdentifier  = errors.New("invalid identifier")
	ErrEmptyIdentifier    = errors.New("identifier cannot be empty")
	ErrIdentifierTooLong  = errors.New("identifier exceeds maximum length")
	ErrInvalidCharacter   = errors.New("identifier contains invalid characters")
	ErrTableNotFound      = errors.New("table not found")
	ErrDuplicateTable     = errors.New("duplicate table")
	ErrDatabaseNotOpen    = errors.New("database not open")
	ErrRemoteDatabase     = errors.New("operation not supported on remote databases")
	ErrEnsureFailed       = errors.New("schema ensure failed")
	ErrHistoryReadOnly    = errors.New("history opened read-only")
)

// InvalidSpecErr wraps a validation failure for a table spec.
func InvalidSpecErr(table string, err error) error {
	return fmt.Errorf("%w: table %s: %w", ErrInvalidSpec, table, err)
}

// InvalidTypeErr returns an error indicating an invalid column type was specified.
func InvalidTypeErr(column, typeName string) error {
	return fmt.Errorf("%w: type %s for column %s", ErrInvalidColumnType, typeName, column)
}

// InvalidConstraintErr returns an error for an unsupported constraint combination.
func InvalidConstraintErr(column, msg string) error {
	return fmt.Errorf("%w: %s on column %s", ErrInvalidConstraint, msg, column)
}

// DuplicateColumnErr returns an error indicating a column was declared twice.
func DuplicateColumnErr(table, column string) error {
	return fmt.Errorf("%w: %s in table %s", ErrDuplicateColumn, column, table)
}

// UnknownIndexColumnErr returns an error for an index on an undeclared column.
func UnknownIndexColumnErr(table, column string) error {
	return fmt.Errorf("%w: %s in table %s", ErrUnknownIndexColumn, column, table)
}

// TableNotFoundErr returns an error indicating a table was not found.
func TableNotFoundErr(table string) error {
	return fmt.Errorf("%w: %s", ErrTableNotFound, table)
}

// DuplicateTableErr returns an error indicating a table was declared twice.
func DuplicateTableErr(table string) error {
	return fmt.Errorf("%w: %s", ErrDuplicateTable, table)
}
