package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthCheckReturnsHealthyStatus(t *testing.T) {
	h := New(&mockOrchestrator{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if resp.Status != statusHealthy {
		t.Errorf("Status = %q, want %q", resp.Status, statusHealthy)
	}
	if resp.GoVersion == "" {
		t.Error("expected GoVersion to be populated")
	}
	if resp.NumCPU < 1 {
		t.Errorf("NumCPU = %d, want >= 1", resp.NumCPU)
	}
}

func TestHealthCheckHeadRequestOmitsBody(t *testing.T) {
	h := New(&mockOrchestrator{})

	req := httptest.NewRequest(http.MethodHead, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body length = %d, want 0 for HEAD request", rec.Body.Len())
	}
}
