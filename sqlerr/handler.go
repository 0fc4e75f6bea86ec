package sqlerr

import (
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MapCode maps a SQLSTATE string onto our Code enum.
func MapCode(sqlstate string) Code {
	switch sqlstate {
	case "23505":
		return UniqueViolation
	case "23503":
		return ForeignKeyViolation
	case "23502":
		return NotNullViolation
	case "23514":
		return CheckViolation
	default:
		return Other
	}
}

// MapSeverity maps the severity string Postgres reports onto our enum.
func MapSeverity(severity string) Severity {
	switch severity {
	case "ERROR":
		return SeverityError
	case "FATAL":
		return SeverityFatal
	case "PANIC":
		return SeverityPanic
	default:
		return SeverityUnknown
	}
}

// ConvertPgError converts a pgconn.PgError (raw Postgres error) into a
// structured *sqlerr.Error, mapping SQLSTATE and severity onto our
// enums and keeping the server's metadata.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// Classify reports the Code for an arbitrary error coming back from a
// pgx call.
//
// Behavior:
//   - pgx.ErrNoRows / sql.ErrNoRows anywhere in the chain: NoRows
//   - pgx.ErrTooManyRows: TooManyRows
//   - pgconn.PgError: mapped by SQLSTATE
//   - already-converted *sqlerr.Error: its Code
//   - anything else: Other
//
// Repositories call this at the boundary after a failed store call and
// translate exactly the codes they understand; Other must propagate
// verbatim.
func Classify(err error) Code {
	if err == nil {
		return Other
	}

	switch {
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, sql.ErrNoRows):
		return NoRows
	case errors.Is(err, pgx.ErrTooManyRows):
		return TooManyRows
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return MapCode(pgerr.Code)
	}

	return ErrCode(err)
}

// ErrCode reports the mapped Code for an error already normalized into
// *sqlerr.Error, walking the chain with errors.As. Returns Other when
// no *Error is found.
func ErrCode(err error) Code {
	var serr *Error
	if errors.As(err, &serr) {
		return serr.Code
	}
	return Other
}

// Convert normalizes an arbitrary pgx failure into *sqlerr.Error when
// it carries a Postgres server error; otherwise it returns nil.
func Convert(err error) *Error {
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return ConvertPgError(pgerr)
	}
	return nil
}

// Describe produces a human-readable description of a classified
// error, suitable for wrapping into repository error messages.
//
// Examples:
//
//	unique violation on users_email_key -> "a user with this Email already exists"
//	foreign key violation on passwords  -> "the referenced User does not exist"
func Describe(serr *Error) string {
	entityName := getEntityName(serr.TableName, serr.ColumnName)

	switch serr.Code {
	case ForeignKeyViolation:
		// On an FK failure Postgres reports the referencing table; name
		// the referenced entity from the constraint name instead.
		if ref := extractColumnForForeignKey(serr.TableName, serr.ConstraintName); ref != "" {
			entityName = humanizeText(strings.TrimSuffix(ref, "_id"))
		}
		return "the referenced " + entityName + " does not exist"

	case UniqueViolation:
		if column := extractColumnForUniqueViolation(serr.ConstraintName); column != "" {
			return "a " + entityName + " with this " + humanizeText(column) + " already exists"
		}
		return "a " + entityName + " with this identifier already exists"

	case NotNullViolation:
		fieldName := humanizeText(serr.ColumnName)
		if fieldName == "" {
			fieldName = "field"
		}
		return "the " + fieldName + " is required"

	default:
		return serr.Message
	}
}

// getEntityName infers an entity name from table/column metadata.
//
// Priority:
//  1. a column ending in "_id" names the referenced entity ("user_id" -> "User")
//  2. the table name, crudely singularized ("users" -> "User")
//  3. "record"
func getEntityName(tableName, columnName string) string {
	if columnName != "" && strings.HasSuffix(strings.ToLower(columnName), "_id") {
		entity := strings.TrimSuffix(strings.ToLower(columnName), "_id")
		return humanizeText(entity)
	}

	if tableName != "" {
		entity := tableName
		if strings.HasSuffix(entity, "s") && len(entity) > 1 {
			entity = entity[:len(entity)-1]
		}
		return humanizeText(entity)
	}

	return "record"
}

// humanizeText converts snake_case identifiers into Title Case, e.g.
// "created_at" -> "Created At".
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// extractColumnForForeignKey infers the referencing column from a
// Postgres default FK constraint name, "<table>_<column>_fkey".
// Example: passwords_user_id_fkey -> "user_id".
func extractColumnForForeignKey(tableName, constraintName string) string {
	if constraintName == "" || !strings.HasSuffix(constraintName, "_fkey") {
		return ""
	}
	column := strings.TrimSuffix(constraintName, "_fkey")
	if tableName != "" {
		column = strings.TrimPrefix(column, tableName+"_")
	}
	return column
}

var uniqueConstraintRe = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)

// extractColumnForUniqueViolation infers the column name from a
// constraint name. Two conventions are supported:
//
//  1. "unique_<table>_<column>", e.g. unique_users_email -> "email"
//  2. "<table>_<column>_key" (Postgres default), e.g. users_email_key -> "email"
func extractColumnForUniqueViolation(constraintName string) string {
	if constraintName == "" {
		return ""
	}

	if strings.HasPrefix(constraintName, "unique_") {
		parts := strings.Split(constraintName, "_")
		if len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}

	matches := uniqueConstraintRe.FindStringSubmatch(constraintName)
	if len(matches) > 1 {
		return matches[1]
	}

	return ""
}
