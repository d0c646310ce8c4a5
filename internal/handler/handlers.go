// Package handler is the first layer. The first entry point
// for business logic after the router.
//
// It parses requests, handles input validation using the
// validation package, and calls the appropriate service layer.
package handler

import (
	"github.com/deppfellow/posts-api/internal/server"
	"github.com/deppfellow/posts-api/internal/service"
)

// Handlers is a container that groups all HTTP handlers.
type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	Post    *PostHandler
}

// NewHandlers constructs the handler container. db backs the health check.
func NewHandlers(s *server.Server, services *service.Services, db Pinger) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s, db),
		OpenAPI: NewOpenAPIHandler(s),
		Post:    NewPostHandler(s, services.Post),
	}
}
