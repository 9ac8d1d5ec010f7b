package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/mixtugu/ARization/internal/convert"
	"github.com/mixtugu/ARization/internal/ingest"
	"github.com/mixtugu/ARization/internal/keys"
	"github.com/mixtugu/ARization/internal/resolve"
	"github.com/mixtugu/ARization/internal/storage"
)

type stubConverter struct {
	output []byte
	err    error
}

func (s *stubConverter) Convert(_ context.Context, _ []byte, _ keys.Format) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.output, nil
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), into); err != nil {
		t.Fatalf("response %q is not JSON: %v", rec.Body.String(), err)
	}
}

func TestUploadHandler(t *testing.T) {
	store := storage.NewMemoryStore()
	coordinator := ingest.NewCoordinator(store, &stubConverter{output: []byte("usdz")}, "https://ar.example")

	e := echo.New()
	NewUploadHandler(coordinator).Register(e)

	body, contentType := multipartBody(t, "file", "chair.glb", []byte("glb-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body %s", rec.Code, rec.Body.String())
	}
	var receipt ingest.Receipt
	decodeJSON(t, rec, &receipt)
	if !strings.HasSuffix(receipt.Key, "_chair.glb") {
		t.Fatalf("receipt key = %q", receipt.Key)
	}
	if receipt.Variant != ingest.VariantCreated {
		t.Fatalf("receipt variant = %q", receipt.Variant)
	}
	if !strings.Contains(receipt.ShareURL, "/#/ar?key=") {
		t.Fatalf("share URL = %q", receipt.ShareURL)
	}
}

func TestUploadHandlerRejectsUnsupportedFormat(t *testing.T) {
	coordinator := ingest.NewCoordinator(storage.NewMemoryStore(), &stubConverter{}, "https://ar.example")
	e := echo.New()
	NewUploadHandler(coordinator).Register(e)

	body, contentType := multipartBody(t, "file", "payload.exe", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("upload(exe) status = %d; want 400", rec.Code)
	}
}

func TestUploadHandlerMissingFile(t *testing.T) {
	coordinator := ingest.NewCoordinator(storage.NewMemoryStore(), &stubConverter{}, "https://ar.example")
	e := echo.New()
	NewUploadHandler(coordinator).Register(e)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader("no file"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("upload without file status = %d; want 400", rec.Code)
	}
}

func TestUploadHandlerStoreOutage(t *testing.T) {
	store := storage.NewMemoryStore()
	store.FailPut = fmt.Errorf("simulated outage")
	coordinator := ingest.NewCoordinator(store, &stubConverter{}, "https://ar.example")
	e := echo.New()
	NewUploadHandler(coordinator).Register(e)

	body, contentType := multipartBody(t, "file", "chair.glb", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("upload during outage status = %d; want 503", rec.Code)
	}
}

func TestResolveHandlerPlatformFromUserAgent(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()
	store.Put(ctx, "1700_chair.glb", []byte("x"), "model/gltf-binary", false)
	store.Put(ctx, "1700_chair.usdz", []byte("y"), "model/vnd.usdz+zip", false)

	e := echo.New()
	NewViewHandler(resolve.NewResolver(store)).Register(e)

	req := httptest.NewRequest(http.MethodGet, "/api/resolve?key=1700_chair.glb", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Linux; Android 14; Pixel 8)")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("resolve status = %d, body %s", rec.Code, rec.Body.String())
	}
	var view resolve.View
	decodeJSON(t, rec, &view)
	if view.Platform != "android" {
		t.Fatalf("platform = %q; want android", view.Platform)
	}
	if !strings.Contains(view.LaunchURI, "mode=ar_only") {
		t.Fatalf("launch URI = %q; want a Scene Viewer intent", view.LaunchURI)
	}
}

func TestResolveHandlerExplicitPlatformOverride(t *testing.T) {
	store := storage.NewMemoryStore()
	store.Put(context.Background(), "1700_chair.glb", []byte("x"), "model/gltf-binary", false)

	e := echo.New()
	NewViewHandler(resolve.NewResolver(store)).Register(e)

	req := httptest.NewRequest(http.MethodGet, "/api/resolve?key=1700_chair.glb&platform=ios", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0)")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("resolve status = %d", rec.Code)
	}
	var view resolve.View
	decodeJSON(t, rec, &view)
	if view.Platform != "ios" {
		t.Fatalf("platform = %q; want ios (explicit override)", view.Platform)
	}
	if !view.Degraded {
		t.Fatal("iOS resolve without a usdz sibling must report degraded")
	}
}

func TestResolveHandlerErrors(t *testing.T) {
	e := echo.New()
	NewViewHandler(resolve.NewResolver(storage.NewMemoryStore())).Register(e)

	req := httptest.NewRequest(http.MethodGet, "/api/resolve", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("resolve without key status = %d; want 400", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/resolve?key=1700_gone.glb", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("resolve of a missing key status = %d; want 404", rec.Code)
	}
}

func TestConvertHandler(t *testing.T) {
	store := storage.NewMemoryStore()
	store.Put(context.Background(), "1700_chair.glb", []byte("glb"), "model/gltf-binary", false)

	e := echo.New()
	NewConvertHandler(store, &stubConverter{output: []byte("usdz")}, "models").Register(e)

	req := httptest.NewRequest(http.MethodPost, "/api/convert-usdz",
		strings.NewReader(`{"bucket":"models","key":"1700_chair.glb"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("convert status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		OK      bool   `json:"ok"`
		USDZKey string `json:"usdzKey"`
	}
	decodeJSON(t, rec, &resp)
	if !resp.OK || resp.USDZKey != "1700_chair.usdz" {
		t.Fatalf("convert response = %+v", resp)
	}
	if err := store.Stat(context.Background(), "1700_chair.usdz"); err != nil {
		t.Fatalf("usdz sibling missing after deferred conversion: %v", err)
	}
}

func TestConvertHandlerBadRequests(t *testing.T) {
	store := storage.NewMemoryStore()
	e := echo.New()
	NewConvertHandler(store, &stubConverter{output: []byte("usdz")}, "models").Register(e)

	cases := []struct {
		name string
		body string
	}{
		{"missing bucket", `{"key":"1700_chair.glb"}`},
		{"missing key", `{"bucket":"models"}`},
		{"unknown bucket", `{"bucket":"other","key":"1700_chair.glb"}`},
		{"non-convertible key", `{"bucket":"models","key":"1700_scan.stl"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/convert-usdz", strings.NewReader(tc.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d; want 400", rec.Code)
			}
		})
	}
}

func TestConvertHandlerFailuresAre500(t *testing.T) {
	store := storage.NewMemoryStore()
	store.Put(context.Background(), "1700_chair.glb", []byte("glb"), "model/gltf-binary", false)

	e := echo.New()
	failing := &stubConverter{err: &convert.Error{Op: "scene parse", Err: fmt.Errorf("mock failure")}}
	NewConvertHandler(store, failing, "models").Register(e)

	req := httptest.NewRequest(http.MethodPost, "/api/convert-usdz",
		strings.NewReader(`{"bucket":"models","key":"1700_chair.glb"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("convert failure status = %d; want 500", rec.Code)
	}
	var resp struct {
		Error string `json:"error"`
	}
	decodeJSON(t, rec, &resp)
	if resp.Error == "" {
		t.Fatal("500 response must carry an error field")
	}
}

func TestAdminListAndPurge(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()
	store.Put(ctx, "1700_chair.glb", []byte("x"), "model/gltf-binary", false)
	store.Put(ctx, "1700_chair.usdz", []byte("y"), "model/vnd.usdz+zip", false)

	e := echo.New()
	NewAdminHandler(store).Register(e)

	req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listing struct {
		Keys []string `json:"keys"`
	}
	decodeJSON(t, rec, &listing)
	if len(listing.Keys) != 2 {
		t.Fatalf("listing = %v; want 2 keys", listing.Keys)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/models", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("purge status = %d", rec.Code)
	}
	var purge struct {
		Deleted int `json:"deleted"`
	}
	decodeJSON(t, rec, &purge)
	if purge.Deleted != 2 {
		t.Fatalf("purge deleted %d; want 2", purge.Deleted)
	}
	if left, _ := store.List(ctx, ""); len(left) != 0 {
		t.Fatalf("%d keys remain after purge", len(left))
	}
}

func TestHealth(t *testing.T) {
	e := echo.New()
	NewHealthHandler().Register(e)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
}
