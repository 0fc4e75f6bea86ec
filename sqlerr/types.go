package sqlerr

import "fmt"

// Code categorizes a database error into the handful of cases the
// repository layer cares about. Everything unrecognized is Other.
type Code int

const (
	// Other is any failure this package does not classify: connectivity
	// loss, syntax errors, serialization failures, corruption. Callers
	// must propagate these untranslated.
	Other Code = iota

	// NoRows means a query expected to return a row returned none.
	NoRows

	// TooManyRows means a query expected to return exactly one row
	// returned several. Under intact constraints this indicates data
	// corruption.
	TooManyRows

	// UniqueViolation is SQLSTATE 23505: a write collided with a
	// unique-indexed column of an existing row.
	UniqueViolation

	// ForeignKeyViolation is SQLSTATE 23503: a referencing column's
	// value does not exist in the referenced table.
	ForeignKeyViolation

	// NotNullViolation is SQLSTATE 23502.
	NotNullViolation

	// CheckViolation is SQLSTATE 23514.
	CheckViolation
)

// String returns the code's name for logs and error messages.
func (c Code) String() string {
	switch c {
	case NoRows:
		return "no_rows"
	case TooManyRows:
		return "too_many_rows"
	case UniqueViolation:
		return "unique_violation"
	case ForeignKeyViolation:
		return "foreign_key_violation"
	case NotNullViolation:
		return "not_null_violation"
	case CheckViolation:
		return "check_violation"
	default:
		return "other"
	}
}

// Severity mirrors the severity field Postgres reports on errors.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityError
	SeverityFatal
	SeverityPanic
)

// Error is a structured view of a Postgres server error.
//
// It keeps the raw SQLSTATE and the table/column/constraint metadata
// the server reported, alongside the mapped Code, so callers can
// switch on the category without losing the details.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string // original SQLSTATE
	Message        string // server's primary message
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string

	driverErr error // original driver error, preserved for Unwrap
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s (SQLSTATE %s): %s", e.Code, e.DatabaseCode, e.Message)
}

// Unwrap exposes the original driver error so errors.Is/As keep
// working against pgconn types.
func (e *Error) Unwrap() error {
	return e.driverErr
}
