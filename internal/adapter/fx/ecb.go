// Package fx contains exchange rate provider clients.
package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks/internal/domain"
)

// DefaultECBBaseURL serves ECB reference rates with historical lookups.
const DefaultECBBaseURL = "https://api.frankfurter.app"

// ECBProvider fetches European Central Bank reference rates over HTTP.
// The provider does a single fetch per call; retry policy lives in the
// caller.
type ECBProvider struct {
	client  *http.Client
	baseURL string
}

// NewECBProvider creates a provider against baseURL; an empty baseURL
// uses the public endpoint.
func NewECBProvider(client *http.Client, baseURL string) *ECBProvider {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultECBBaseURL
	}
	return &ECBProvider{client: client, baseURL: baseURL}
}

// Name identifies the provider in rate records.
func (p *ECBProvider) Name() string {
	return "ecb"
}

type rateResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// FetchRate retrieves the reference rate for one pair at a date. The
// endpoint resolves weekends and holidays to the last published day.
func (p *ECBProvider) FetchRate(ctx context.Context, from, to string, date time.Time) (decimal.Decimal, error) {
	addr := fmt.Sprintf("%s/%s?from=%s&to=%s",
		p.baseURL,
		date.Format("2006-01-02"),
		url.QueryEscape(from),
		url.QueryEscape(to),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: build request: %v", domain.ErrProviderFailure, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: unexpected status %s", domain.ErrProviderFailure, resp.Status)
	}

	var body rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("%w: decode response: %v", domain.ErrProviderFailure, err)
	}

	rate, ok := body.Rates[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no rate for %s in response", domain.ErrProviderFailure, to)
	}

	return decimal.NewFromFloat(rate), nil
}
