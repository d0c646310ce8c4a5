// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API routes,
// mapping specific paths to their corresponding handlers
package router

import (
	"net/http"

	"github.com/deppfellow/posts-api/internal/handler"
	"github.com/deppfellow/posts-api/internal/middleware"
	"github.com/deppfellow/posts-api/internal/server"
	"github.com/deppfellow/posts-api/internal/validation"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the Echo instance: error handler, binder, global
// middleware chain, system routes and the gated /api routes.
//
// Any path or verb not registered here ends in a 404 "Route not found".
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	mws := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = mws.Global.GlobalErrorHandler
	router.Binder = &validation.Binder{}

	// Order matters: the request ID feeds the tracing attributes and the
	// scoped logger, which the request logger and rate limiter then use.
	router.Use(
		middleware.RequestID(),
		mws.Tracing.NewRelicMiddleware(),
		mws.Global.Recover(),
		mws.Global.Secure(),
		mws.Global.CORS(),
		mws.ContextEnhancer.EnhanceContext(),
		mws.Tracing.EnhanceTracing(),
		mws.Global.RequestLogger(),
		mws.RateLimit.Limit(),
	)

	registerSystemRoutes(router, h)

	// Every resource route carries the API key gate itself, so a route added
	// here cannot skip it.
	api := router.Group("/api")
	gate := mws.Auth.RequireAPIKey

	api.GET("/getPosts", handler.Handle(h.Post.ListPosts, http.StatusOK), gate)
	api.POST("/insertPost", handler.Handle(h.Post.CreatePost, http.StatusOK), gate)
	api.PUT("/updatePost", handler.Handle(h.Post.UpdatePost, http.StatusOK), gate)
	api.DELETE("/deletePost", handler.Handle(h.Post.DeletePost, http.StatusOK), gate)

	return router
}
