package fx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks/internal/domain"
)

func TestECBProviderFetchRate(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"amount":1,"base":"EUR","date":"2025-03-31","rates":{"USD":1.0815}}`))
	}))
	defer server.Close()

	provider := NewECBProvider(server.Client(), server.URL)
	date := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	rate, err := provider.FetchRate(context.Background(), "EUR", "USD", date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !rate.Equal(decimal.NewFromFloat(1.0815)) {
		t.Errorf("expected rate 1.0815, got %s", rate)
	}
	if gotPath != "/2025-03-31" {
		t.Errorf("expected date path, got %s", gotPath)
	}
	if gotQuery != "from=EUR&to=USD" {
		t.Errorf("expected pair query, got %s", gotQuery)
	}
}

func TestECBProviderMissingRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"amount":1,"base":"EUR","date":"2025-03-31","rates":{}}`))
	}))
	defer server.Close()

	provider := NewECBProvider(server.Client(), server.URL)

	_, err := provider.FetchRate(context.Background(), "EUR", "XXX", time.Now())
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("expected provider failure, got %v", err)
	}
}

func TestECBProviderServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	provider := NewECBProvider(server.Client(), server.URL)

	_, err := provider.FetchRate(context.Background(), "EUR", "USD", time.Now())
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("expected provider failure, got %v", err)
	}
}
