package middleware

import (
	"crypto/subtle"
	"time"

	"github.com/deppfellow/posts-api/internal/errs"
	"github.com/deppfellow/posts-api/internal/server"
	"github.com/labstack/echo/v4"
)

// APIKeyHeader carries the shared secret on every resource request.
const APIKeyHeader = echo.HeaderAuthorization

// AuthMiddleware holds the app Server so middleware can access shared deps
// like Logger and Config.
type AuthMiddleware struct {
	server *server.Server
}

// NewAuthMiddleware constructs an AuthMiddleware.
func NewAuthMiddleware(s *server.Server) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
	}
}

// RequireAPIKey is an Echo middleware that admits a request only when its
// Authorization header equals the configured API key byte for byte.
//
// Rejected requests never reach the handler, so the store is never touched.
// The header is compared as is: no "Bearer" scheme is stripped.
func (auth *AuthMiddleware) RequireAPIKey(next echo.HandlerFunc) echo.HandlerFunc {
	expected := []byte(auth.server.Config.Auth.APIKey)

	return func(c echo.Context) error {
		start := time.Now()

		presented := c.Request().Header.Get(APIKeyHeader)
		if presented == "" || subtle.ConstantTimeCompare([]byte(presented), expected) != 1 {
			GetLogger(c).Warn().
				Str("function", "RequireAPIKey").
				Bool("header_present", presented != "").
				Dur("duration", time.Since(start)).
				Msg("rejected request with invalid API key")

			return errs.NewUnauthorizedError("Unauthorized", false)
		}

		return next(c)
	}
}
