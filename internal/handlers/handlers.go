// Package handlers implements the HTTP API: upload, handle
// resolution, deferred conversion, and admin maintenance.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the standard API error body (message only).
type ErrorResponse struct {
	Message string `json:"message"`
}

// HealthHandler serves the liveness endpoint.
type HealthHandler struct{}

// NewHealthHandler creates the health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Register mounts GET /health.
func (h *HealthHandler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)
}

// Health returns 200 {"status":"ok"}.
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
