package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTenant_RejectsMissingHeader(t *testing.T) {
	called := false
	handler := Tenant(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/entries", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if called {
		t.Fatal("handler should not run without a tenant header")
	}
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestTenant_StashesTenantInContext(t *testing.T) {
	var got string
	handler := Tenant(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = TenantFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/entries", nil)
	req.Header.Set(TenantHeader, "tenant-42")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got != "tenant-42" {
		t.Fatalf("expected tenant-42 in context, got %q", got)
	}
}

func TestTenantFromContext_EmptyWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := TenantFromContext(req.Context()); got != "" {
		t.Fatalf("expected empty tenant, got %q", got)
	}
}
