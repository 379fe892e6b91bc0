package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fundsetu/mfdata-backend/internal/api/handlers"
	"github.com/fundsetu/mfdata-backend/internal/testutil"
)

// TestSystemHandler_Health tests the health endpoint.
func TestSystemHandler_Health(t *testing.T) {
	t.Run("healthy database returns 200", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewSystemHandler(testutil.NewTestSystemService(t, db))

		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		rec := httptest.NewRecorder()

		handler.Health(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Status = %d, want 200", rec.Code)
		}
		var body handlers.HealthResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if body.Status != "healthy" || body.Database != "connected" {
			t.Errorf("Body = %+v, want healthy/connected", body)
		}
	})

	t.Run("closed database returns 503", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewSystemHandler(testutil.NewTestSystemService(t, db))
		db.Close()

		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		rec := httptest.NewRecorder()

		handler.Health(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("Status = %d, want 503", rec.Code)
		}
	})
}

// TestSystemHandler_Version tests the version endpoint.
func TestSystemHandler_Version(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := handlers.NewSystemHandler(testutil.NewTestSystemService(t, db))

	req := httptest.NewRequest(http.MethodGet, "/api/system/version", nil)
	rec := httptest.NewRecorder()

	handler.Version(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}
	var body handlers.VersionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.AppVersion == "" {
		t.Error("Expected a version string")
	}
}
