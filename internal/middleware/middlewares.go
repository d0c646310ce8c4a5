package middleware

import (
	"github.com/deppfellow/posts-api/internal/server"
)

// Middlewares groups all middleware components used by the HTTP server, so
// routing code builds them once from the application container.
type Middlewares struct {
	// Global holds CORS, request logging, recovery, secure headers and the
	// global error handler.
	Global *GlobalMiddlewares

	// Auth gates resource routes behind the shared API key.
	Auth *AuthMiddleware

	// ContextEnhancer attaches a request-scoped logger.
	ContextEnhancer *ContextEnhancer

	// Tracing provides New Relic middleware and transaction attributes.
	Tracing *TracingMiddleware

	// RateLimit enforces the optional per-IP limit.
	RateLimit *RateLimitMiddleware
}

// NewMiddlewares constructs all middleware components using the application container.
//
// Without New Relic the tracing middleware degrades into a no-op.
func NewMiddlewares(s *server.Server) *Middlewares {
	nrApp := s.LoggerService.GetApplication()

	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		Auth:            NewAuthMiddleware(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, nrApp),
		RateLimit:       NewRateLimitMiddleware(s),
	}
}
