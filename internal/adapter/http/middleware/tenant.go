package middleware

import (
	"context"
	"net/http"
)

// TenantHeader carries the caller's tenant on every API request.
const TenantHeader = "X-Tenant-ID"

type tenantKeyType struct{}

var tenantKey tenantKeyType

// Tenant rejects requests without a tenant header and stashes the
// tenant id in the request context.
func Tenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.Header.Get(TenantHeader)
		if tenantID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"missing tenant","message":"` + TenantHeader + ` header is required"}`))
			return
		}

		ctx := context.WithValue(r.Context(), tenantKey, tenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TenantFromContext returns the tenant id stored by Tenant.
func TenantFromContext(ctx context.Context) string {
	tenantID, _ := ctx.Value(tenantKey).(string)
	return tenantID
}
