package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DukeRupert/uphill/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// =============================================================================
// Error Response Tests
// =============================================================================

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{domain.EINVALID, http.StatusBadRequest},
		{domain.ENOTFOUND, http.StatusNotFound},
		{domain.ECONFLICT, http.StatusConflict},
		{domain.EGONE, http.StatusGone},
		{domain.EINTERNAL, http.StatusInternalServerError},
		{"unknown", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := ErrorCodeToHTTPStatus(tt.code); got != tt.want {
			t.Errorf("ErrorCodeToHTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestErrorResponse_InternalErrorHidesDetails(t *testing.T) {
	cause := &mockReadError{message: "open /srv/data/resorts.json: permission denied"}
	internalErr := domain.Internal(cause, "catalog.load", "read resorts.json")

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	ErrorResponse(rec, req, discardLogger(), internalErr)

	body := rec.Body.String()
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(body, "/srv/data") {
		t.Errorf("response exposes file path: %s", body)
	}
	if strings.Contains(body, "catalog.load") {
		t.Errorf("response exposes internal operation: %s", body)
	}
	if !strings.Contains(body, "internal error") {
		t.Errorf("response should contain generic internal error message, got: %s", body)
	}
}

func TestErrorResponse_JSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/live/abc/key", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	ErrorResponse(rec, req, discardLogger(), domain.Gone("live.lookup", "session expired"))

	if rec.Code != http.StatusGone {
		t.Fatalf("status = %d, want 410", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var got JSONError
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Error.Code != domain.EGONE {
		t.Errorf("code = %q, want %q", got.Error.Code, domain.EGONE)
	}
	if got.Error.Message != "session expired" {
		t.Errorf("message = %q", got.Error.Message)
	}
}

func TestErrorResponse_HTMXGetsText(t *testing.T) {
	req := httptest.NewRequest("POST", "/live/abc/input.json", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	ErrorResponse(rec, req, discardLogger(), domain.Invalid("live.key", "unknown key"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if strings.HasPrefix(rec.Body.String(), "{") {
		t.Errorf("htmx request got JSON: %s", rec.Body.String())
	}
}

func TestErrorResponse_UnwrappedErrorReturnsGeneric(t *testing.T) {
	rawErr := &mockReadError{message: "AccessDenied: bucket uphill-site"}

	req := httptest.NewRequest("GET", "/trailmaps/vail.webp", nil)
	rec := httptest.NewRecorder()

	ErrorResponse(rec, req, discardLogger(), rawErr)

	body := rec.Body.String()
	if strings.Contains(body, "AccessDenied") || strings.Contains(body, "bucket") {
		t.Errorf("response exposes raw error: %s", body)
	}
	if !strings.Contains(body, "internal error") {
		t.Errorf("response should contain generic message, got: %s", body)
	}
}

func TestNotFoundResponse(t *testing.T) {
	req := httptest.NewRequest("GET", "/nope", nil)
	rec := httptest.NewRecorder()

	NotFoundResponse(rec, req, discardLogger())

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "not found") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

// mockReadError simulates a low-level error for testing
type mockReadError struct {
	message string
}

func (e *mockReadError) Error() string {
	return e.message
}
