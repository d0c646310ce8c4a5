package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/posts-api/internal/middleware"
	"github.com/deppfellow/posts-api/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Pinger checks connectivity to a dependency. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler exposes a "system" endpoint that external systems can use to verify
// the service is alive and its store is reachable.
type HealthHandler struct {
	Handler
	db Pinger
}

// NewHealthHandler constructs a HealthHandler. db may be nil, in which case
// the database check reports unhealthy.
func NewHealthHandler(s *server.Server, db Pinger) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
		db:      db,
	}
}

// CheckHealth returns system health status and dependency checks.
//
// It returns 200 OK if all configured checks pass and 503 Service
// Unavailable otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	cfg := h.server.Config.Observability.HealthChecks

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := make(map[string]interface{})
	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	isHealthy := true
	if cfg.Enabled {
		for _, name := range cfg.Checks {
			switch name {
			case "database":
				if !h.checkDatabase(c.Request().Context(), &logger, cfg.Timeout, checks) {
					isHealthy = false
				}
			default:
				logger.Debug().Str("check", name).Msg("skipping unknown health check")
			}
		}
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		h.recordHealthCheckError(map[string]interface{}{
			"check_type":        "overall",
			"operation":         "health_check",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}

// checkDatabase pings the store within timeout and records the result in checks.
func (h *HealthHandler) checkDatabase(ctx context.Context, logger *zerolog.Logger, timeout time.Duration, checks map[string]interface{}) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dbStart := time.Now()

	var err error
	if h.db == nil {
		err = fmt.Errorf("database not configured")
	} else {
		err = h.db.Ping(ctx)
	}

	if err != nil {
		// The error stays in the logs; the public response only says unhealthy.
		checks["database"] = map[string]interface{}{
			"status":        "unhealthy",
			"response_time": time.Since(dbStart).String(),
		}

		logger.Error().
			Err(err).
			Dur("response_time", time.Since(dbStart)).
			Msg("database health check failed")

		h.recordHealthCheckError(map[string]interface{}{
			"check_type":       "database",
			"operation":        "health_check",
			"error_type":       "database_unhealthy",
			"response_time_ms": time.Since(dbStart).Milliseconds(),
			"error_message":    err.Error(),
		})
		return false
	}

	checks["database"] = map[string]interface{}{
		"status":        "healthy",
		"response_time": time.Since(dbStart).String(),
	}
	return true
}

func (h *HealthHandler) recordHealthCheckError(attrs map[string]interface{}) {
	if app := h.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("HealthCheckError", attrs)
	}
}
