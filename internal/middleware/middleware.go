// Package middleware stores global and route-specific middleware.
//
// These intercept requests to handle cross-cutting concerns
// such as the API key gate, request logging, CORS,
// rate limiting, and panic recovery
package middleware
