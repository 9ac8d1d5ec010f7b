package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mixtugu/ARization/internal/storage"
)

// AdminHandler backs the admin page: list every stored asset and
// purge the bucket. Purge is the only deletion path in the system.
type AdminHandler struct {
	store storage.ObjectStore
}

// NewAdminHandler creates the admin handler.
func NewAdminHandler(store storage.ObjectStore) *AdminHandler {
	return &AdminHandler{store: store}
}

// Register mounts GET and DELETE /api/models.
func (h *AdminHandler) Register(e *echo.Echo) {
	e.GET("/api/models", h.List)
	e.DELETE("/api/models", h.PurgeAll)
}

// List returns every key in the bucket.
func (h *AdminHandler) List(c echo.Context) error {
	found, err := h.store.List(c.Request().Context(), "")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "listing assets failed"})
	}
	if found == nil {
		found = []string{}
	}
	return c.JSON(http.StatusOK, map[string][]string{"keys": found})
}

// PurgeAll removes every object in the bucket, originals and derived
// variants alike.
func (h *AdminHandler) PurgeAll(c echo.Context) error {
	ctx := c.Request().Context()
	found, err := h.store.List(ctx, "")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "listing assets failed"})
	}
	if len(found) > 0 {
		if err := h.store.Delete(ctx, found...); err != nil {
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "purging assets failed"})
		}
	}
	return c.JSON(http.StatusOK, map[string]int{"deleted": len(found)})
}
