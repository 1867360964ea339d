package middleware

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/api/v1/entries/01HXYZ", "/api/v1/entries/:id"},
		{"/api/v1/entries/01HXYZ/duplicates", "/api/v1/entries/:id/duplicates"},
		{"/api/v1/closes/abc/tasks/def/complete", "/api/v1/closes/:id/tasks/:id/complete"},
		{"/api/v1/accounts/5000/balance", "/api/v1/accounts/:id/balance"},
		{"/api/v1/rates/sync", "/api/v1/rates/sync"},
		{"/health", "/health"},
		{"/api/v1/entries/", "/api/v1/entries/"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.expected {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.expected)
		}
	}
}
