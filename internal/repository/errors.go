// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as the
// access layer and handlers to distinguish between failure scenarios
// with errors.Is and errors.As.
package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is wrapped by every entity-specific not-found error.
// Handlers translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write violates a uniqueness constraint.
// Handlers translate it into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ValidationKind classifies a ValidationError.
type ValidationKind string

const (
	// KindMissing marks a required field that was absent or empty.
	KindMissing ValidationKind = "missing-required-field"
	// KindInvalid marks a field whose value is not acceptable.
	KindInvalid ValidationKind = "invalid"
)

// ValidationError reports a missing or invalid input field.
type ValidationError struct {
	Field string
	Kind  ValidationKind
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Kind)
}

// Missing returns a ValidationError for an absent required field.
func Missing(field string) error { return &ValidationError{Field: field, Kind: KindMissing} }

// Invalid returns a ValidationError for an unacceptable value.
func Invalid(field string) error { return &ValidationError{Field: field, Kind: KindInvalid} }

// isDuplicateKey reports whether err is MySQL error 1062 (ER_DUP_ENTRY).
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
