package validation_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/posts-api/internal/errs"
	"github.com/deppfellow/posts-api/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noteRequest struct {
	ID   int64  `json:"id" form:"id" validate:"required"`
	Text string `json:"text" form:"text" validate:"required,max=5"`
}

func (r *noteRequest) Validate() error { return validation.Struct(r) }
func (r *noteRequest) ValidationMessage() string { return "Missing note" }

type plainRequest struct {
	Name string `json:"name" validate:"required"`
}

func (r *plainRequest) Validate() error { return validation.Struct(r) }

type rejectingRequest struct{}

func (r *rejectingRequest) Validate() error { return errors.New("is rejected") }

func newContext(method, contentType, body string) echo.Context {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func requireBadRequest(t *testing.T, err error) *errs.HTTPError {
	t.Helper()
	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr), "expected *errs.HTTPError, got %v", err)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	return httpErr
}

func TestBindAndValidateJSON(t *testing.T) {
	c := newContext(http.MethodPut, echo.MIMEApplicationJSON, `{"id":7,"text":"hi"}`)
	req := &noteRequest{}

	require.NoError(t, validation.BindAndValidate(c, req))
	assert.Equal(t, int64(7), req.ID)
	assert.Equal(t, "hi", req.Text)
}

func TestBindAndValidateForm(t *testing.T) {
	c := newContext(http.MethodPost, echo.MIMEApplicationForm, "id=3&text=abc")
	req := &noteRequest{}

	require.NoError(t, validation.BindAndValidate(c, req))
	assert.Equal(t, int64(3), req.ID)
	assert.Equal(t, "abc", req.Text)
}

func TestBindAndValidateMissingFieldsUsesPayloadMessage(t *testing.T) {
	c := newContext(http.MethodPost, echo.MIMEApplicationJSON, `{"text":""}`)

	httpErr := requireBadRequest(t, validation.BindAndValidate(c, &noteRequest{}))
	assert.Equal(t, "Missing note", httpErr.Message)
	assert.True(t, httpErr.Override)
	assert.ElementsMatch(t, []errs.FieldError{
		{Field: "id", Error: "is required"},
		{Field: "text", Error: "is required"},
	}, httpErr.Errors)
}

func TestBindAndValidateMaxLength(t *testing.T) {
	c := newContext(http.MethodPost, echo.MIMEApplicationJSON, `{"id":1,"text":"too long"}`)

	httpErr := requireBadRequest(t, validation.BindAndValidate(c, &noteRequest{}))
	assert.Equal(t, []errs.FieldError{{Field: "text", Error: "must not exceed 5 characters"}}, httpErr.Errors)
}

func TestBindAndValidateMalformedBody(t *testing.T) {
	for _, body := range []string{`{"id":`, `{"id":"seven","text":"x"}`, `[1,2]`} {
		c := newContext(http.MethodPut, echo.MIMEApplicationJSON, body)

		httpErr := requireBadRequest(t, validation.BindAndValidate(c, &noteRequest{}))
		assert.Equal(t, "Missing note", httpErr.Message, body)
		assert.Equal(t, []errs.FieldError{{Field: "body", Error: "is malformed"}}, httpErr.Errors, body)
	}
}

func TestBindAndValidateUnsupportedContentType(t *testing.T) {
	c := newContext(http.MethodPost, "text/plain", "hello")

	httpErr := requireBadRequest(t, validation.BindAndValidate(c, &noteRequest{}))
	assert.Equal(t, []errs.FieldError{{Field: "body", Error: "unsupported content type"}}, httpErr.Errors)
}

func TestBindAndValidateDefaultMessage(t *testing.T) {
	c := newContext(http.MethodPost, echo.MIMEApplicationJSON, `{}`)

	httpErr := requireBadRequest(t, validation.BindAndValidate(c, &plainRequest{}))
	assert.Equal(t, validation.DefaultMessage, httpErr.Message)
}

func TestBindAndValidateNonValidatorError(t *testing.T) {
	c := newContext(http.MethodPost, "", "")

	httpErr := requireBadRequest(t, validation.BindAndValidate(c, &rejectingRequest{}))
	assert.Equal(t, []errs.FieldError{{Field: "body", Error: "is rejected"}}, httpErr.Errors)
}
