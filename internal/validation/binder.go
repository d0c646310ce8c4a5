package validation

import (
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

// maxFormBody bounds url-encoded bodies read by Binder.
const maxFormBody = 1 << 20

// Binder is Echo's DefaultBinder plus url-encoded bodies on DELETE, which
// net/http's ParseForm leaves unread.
type Binder struct {
	echo.DefaultBinder
}

// Bind implements echo.Binder.
func (b *Binder) Bind(i interface{}, c echo.Context) error {
	req := c.Request()
	if req.Method == http.MethodDelete && req.Form == nil &&
		strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationForm) {
		body, err := io.ReadAll(io.LimitReader(req.Body, maxFormBody))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unreadable body").SetInternal(err)
		}

		values, err := url.ParseQuery(string(body))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "malformed form body").SetInternal(err)
		}

		// ParseForm is a no-op once Form is set, so the DefaultBinder picks
		// these values up.
		req.PostForm = values
		req.Form = values
	}

	return b.DefaultBinder.Bind(i, c)
}
