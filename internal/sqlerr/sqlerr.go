// Package sqlerr translates database driver errors into application errors.
//
// It parses SQLSTATE codes from the PostgreSQL driver into a Code and a
// readable description for the logs. Clients never see driver detail: every
// store failure becomes a bare 500.
package sqlerr

import "fmt"

// Code is the category of a database error.
type Code string

const (
	Other               Code = "other"
	NotNullViolation    Code = "not_null_violation"
	CheckViolation      Code = "check_violation"
	ConnectionException Code = "connection_exception"
	UndefinedTable      Code = "undefined_table"
	QueryCanceled       Code = "query_canceled"
)

// sqlStates maps SQLSTATE values to their category. Class 08 is matched by prefix
// in MapCode.
var sqlStates = map[string]Code{
	"23502": NotNullViolation,
	"23514": CheckViolation,
	"42P01": UndefinedTable,
	"57014": QueryCanceled,
}

// MapCode maps a SQLSTATE string onto a Code.
func MapCode(sqlState string) Code {
	if code, ok := sqlStates[sqlState]; ok {
		return code
	}
	if len(sqlState) == 5 && sqlState[:2] == "08" {
		return ConnectionException
	}
	return Other
}

// Error is a normalized database error.
type Error struct {
	Code           Code
	DatabaseCode   string
	Message        string
	TableName      string
	ColumnName     string
	ConstraintName string
	driverErr      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.DatabaseCode, e.Message)
}

func (e *Error) Unwrap() error {
	return e.driverErr
}
