package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mixtugu/ARization/internal/ingest"
)

// UploadHandler accepts 3D model uploads and hands them to the
// ingestion coordinator.
type UploadHandler struct {
	coordinator *ingest.Coordinator
}

// NewUploadHandler creates the upload handler.
func NewUploadHandler(coordinator *ingest.Coordinator) *UploadHandler {
	return &UploadHandler{coordinator: coordinator}
}

// Register mounts POST /api/upload.
func (h *UploadHandler) Register(e *echo.Echo) {
	e.POST("/api/upload", h.Upload)
}

// Upload reads the multipart "file" field, ingests it, and returns
// the share handle receipt. Secondary (usdz) failures surface only in
// the receipt's usdz field, never as an HTTP error.
func (h *UploadHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "multipart field \"file\" is required"})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "cannot open uploaded file"})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "cannot read uploaded file"})
	}

	receipt, err := h.coordinator.Ingest(c.Request().Context(), fileHeader.Filename, data)
	switch {
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "unsupported file format: upload glb, gltf, obj, fbx, or stl"})
	case errors.Is(err, ingest.ErrStoreConflict):
		return c.JSON(http.StatusConflict, ErrorResponse{Message: "an asset with this name was uploaded at the same instant, please retry"})
	case err != nil:
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Message: "storage is unavailable, please retry later"})
	}

	return c.JSON(http.StatusCreated, receipt)
}
