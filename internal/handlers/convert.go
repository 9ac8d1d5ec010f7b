package handlers

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mixtugu/ARization/internal/convert"
	"github.com/mixtugu/ARization/internal/keys"
	"github.com/mixtugu/ARization/internal/storage"
)

// ConvertHandler serves the deferred conversion endpoint: derive the
// usdz sibling for an already-stored asset, outside the upload
// request. The wire contract is fixed: 200 {ok, usdzKey},
// 400/500 {error}.
type ConvertHandler struct {
	store     storage.ObjectStore
	converter convert.Converter
	bucket    string
}

// NewConvertHandler creates the deferred conversion handler. bucket
// is the only bucket this deployment serves; requests naming another
// one are rejected.
func NewConvertHandler(store storage.ObjectStore, converter convert.Converter, bucket string) *ConvertHandler {
	return &ConvertHandler{store: store, converter: converter, bucket: bucket}
}

// Register mounts POST /api/convert-usdz.
func (h *ConvertHandler) Register(e *echo.Echo) {
	e.POST("/api/convert-usdz", h.ConvertUSDZ)
}

type convertRequest struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

type convertResponse struct {
	OK      bool   `json:"ok"`
	USDZKey string `json:"usdzKey"`
}

type convertError struct {
	Error string `json:"error"`
}

// ConvertUSDZ downloads the named asset, converts it, and stores the
// usdz sibling with overwrite, so re-running is idempotent.
func (h *ConvertHandler) ConvertUSDZ(c echo.Context) error {
	var req convertRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, convertError{Error: "invalid request body"})
	}
	if req.Bucket == "" || req.Key == "" {
		return c.JSON(http.StatusBadRequest, convertError{Error: "bucket and key are required"})
	}
	if req.Bucket != h.bucket {
		return c.JSON(http.StatusBadRequest, convertError{Error: "unknown bucket"})
	}

	format := keys.FormatOf(req.Key)
	if !keys.Convertible(format) {
		return c.JSON(http.StatusBadRequest, convertError{Error: "key is not a glb/gltf asset"})
	}

	ctx := c.Request().Context()
	data, err := h.store.Get(ctx, req.Key)
	if err != nil {
		log.Printf("deferred conversion: download %q failed: %v", req.Key, err)
		return c.JSON(http.StatusInternalServerError, convertError{Error: "asset download failed"})
	}

	usdzBytes, err := h.converter.Convert(ctx, data, format)
	if err != nil {
		log.Printf("deferred conversion: convert %q failed: %v", req.Key, err)
		return c.JSON(http.StatusInternalServerError, convertError{Error: "conversion failed"})
	}

	derivedKey := keys.Derived(req.Key)
	if err := h.store.Put(ctx, derivedKey, usdzBytes, keys.ContentType(keys.USDZ), true); err != nil {
		log.Printf("deferred conversion: store %q failed: %v", derivedKey, err)
		return c.JSON(http.StatusInternalServerError, convertError{Error: "usdz upload failed"})
	}

	return c.JSON(http.StatusOK, convertResponse{OK: true, USDZKey: derivedKey})
}
