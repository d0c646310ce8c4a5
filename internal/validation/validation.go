// Package validation contains the logic for validating
// request data.
//
// It uses the `validator` library to enforce rules defined in struct tags
// and extracts validation errors into a format the client can understand.
package validation

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/deppfellow/posts-api/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// DefaultMessage is used when a payload does not provide its own message.
const DefaultMessage = "Validation failed"

var validate = validator.New()

// Validatable is implemented by request payload types that know how to validate themselves.
//
// Typical pattern:
//   - Define a request struct with validator tags (`validate:"required"`)
//   - Implement Validate() error that calls validation.Struct(req)
type Validatable interface {
	Validate() error
}

// Messenger is implemented by payloads that report a fixed client message when
// they cannot be bound or validated.
type Messenger interface {
	ValidationMessage() string
}

// Struct validates s against its struct tags.
func Struct(s any) error {
	return validate.Struct(s)
}

// BindAndValidate binds request data into payload and validates it.
//
// Both failures return a 400 *errs.HTTPError carrying the payload's message.
// payload must be a pointer to a struct.
func BindAndValidate(c echo.Context, payload Validatable) error {
	message := messageFor(payload)

	if err := c.Bind(payload); err != nil {
		return errs.NewBadRequestError(message, true, []errs.FieldError{bindFieldError(err)})
	}

	if err := payload.Validate(); err != nil {
		return errs.NewBadRequestError(message, true, extractValidationError(err))
	}

	return nil
}

func messageFor(payload Validatable) string {
	if m, ok := payload.(Messenger); ok {
		return m.ValidationMessage()
	}
	return DefaultMessage
}

// bindFieldError describes a bind failure without leaking decoder internals.
func bindFieldError(err error) errs.FieldError {
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code == http.StatusUnsupportedMediaType {
		return errs.FieldError{Field: "body", Error: "unsupported content type"}
	}
	return errs.FieldError{Field: "body", Error: "is malformed"}
}

func extractValidationError(err error) []errs.FieldError {
	var fieldErrors []errs.FieldError

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []errs.FieldError{{Field: "body", Error: err.Error()}}
	}

	for _, fe := range validationErrors {
		field := strings.ToLower(fe.Field())
		var msg string

		switch fe.Tag() {
		case "required":
			msg = "is required"

		case "min":
			if fe.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must be at least %s characters", fe.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", fe.Param())
			}

		case "max":
			if fe.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", fe.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", fe.Param())
			}

		default:
			if fe.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", field, fe.Tag(), fe.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", field, fe.Tag())
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: field,
			Error: msg,
		})
	}

	return fieldErrors
}
