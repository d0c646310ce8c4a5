package handler

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/deppfellow/posts-api/internal/server"
	"github.com/labstack/echo/v4"
)

//go:embed static
var staticFiles embed.FS

// OpenAPIHandler serves the API documentation: an HTML page that renders
// static/openapi.json.
type OpenAPIHandler struct {
	Handler
}

// NewOpenAPIHandler constructs an OpenAPIHandler with access to shared dependencies.
func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s),
	}
}

// StaticFS returns the embedded static assets, rooted at the static directory.
func (h *OpenAPIHandler) StaticFS() fs.FS {
	return echo.MustSubFS(staticFiles, "static")
}

// ServeOpenAPIUI serves static/openapi.html.
//
// Cache-Control is set to "no-cache" so clients do not reuse old docs.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-cache")

	page, err := staticFiles.ReadFile("static/openapi.html")
	if err != nil {
		return fmt.Errorf("failed to read OpenAPI UI template: %w", err)
	}

	if err := c.HTMLBlob(http.StatusOK, page); err != nil {
		return fmt.Errorf("failed to write HTML response: %w", err)
	}

	return nil
}
