package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mixtugu/ARization/internal/resolve"
	"github.com/mixtugu/ARization/pkg/device"
)

// ViewHandler resolves share handles into platform-specific views.
type ViewHandler struct {
	resolver *resolve.Resolver
}

// NewViewHandler creates the view handler.
func NewViewHandler(resolver *resolve.Resolver) *ViewHandler {
	return &ViewHandler{resolver: resolver}
}

// Register mounts GET /api/resolve.
func (h *ViewHandler) Register(e *echo.Echo) {
	e.GET("/api/resolve", h.Resolve)
}

// Resolve looks up the asset behind ?key=. The platform comes from an
// explicit ?platform= override when given, otherwise from the
// requesting User-Agent.
func (h *ViewHandler) Resolve(c echo.Context) error {
	key := c.QueryParam("key")
	if key == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "query parameter \"key\" is required"})
	}

	platform, ok := device.Parse(c.QueryParam("platform"))
	if !ok {
		platform = device.Classify(c.Request().UserAgent())
	}

	view, err := h.resolver.Resolve(c.Request().Context(), key, platform)
	if err != nil {
		if errors.Is(err, resolve.ErrAssetUnavailable) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Message: "no asset found for this key"})
		}
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "resolution failed"})
	}
	return c.JSON(http.StatusOK, view)
}
