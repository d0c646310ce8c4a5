package router

import (
	"github.com/deppfellow/posts-api/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers endpoints that are not part of the posts
// resource and need no API key: health status and documentation.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)

	// openapi.json and the docs page are embedded in the binary.
	r.StaticFS("/static", h.OpenAPI.StaticFS())
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
