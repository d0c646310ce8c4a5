package sqlerr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/posts-api/internal/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ConvertPgError converts a raw Postgres error into an *Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// FromError reports the *Error behind err when err wraps a Postgres error.
func FromError(err error) (*Error, bool) {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr, true
	}
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return ConvertPgError(pgerr), true
	}
	return nil, false
}

// Describe renders sqlErr as a sentence for operators, e.g.
// "The Title value does not meet required conditions".
func Describe(sqlErr *Error) string {
	field := humanizeText(sqlErr.ColumnName)

	switch sqlErr.Code {
	case NotNullViolation:
		if field == "" {
			field = "field"
		}
		return fmt.Sprintf("The %s is required", field)

	case CheckViolation:
		if field != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", field)
		}
		if sqlErr.ConstraintName != "" {
			return fmt.Sprintf("Constraint %s was violated", sqlErr.ConstraintName)
		}
		return "One or more values do not meet required conditions"

	case UndefinedTable:
		return "The schema is missing; run migrations"

	case QueryCanceled:
		return "The query was canceled"

	case ConnectionException:
		return "The database connection failed"

	default:
		return humanizeText(strings.ToLower(sqlErr.Message))
	}
}

// humanizeText converts snake_case into Title Case: "first_name" -> "First Name".
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// HandleError converts a low-level error into the error a client sees.
//
// An *errs.HTTPError is returned unchanged. Everything else, constraint
// violations included, is a store failure and becomes a 500 without driver
// detail; callers log the original error.
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}
	return errs.NewInternalServerError()
}
