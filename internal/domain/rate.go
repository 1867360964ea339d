package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateType identifies how an exchange rate was derived.
type RateType string

const (
	RateTypeSpot       RateType = "spot"
	RateTypeAverage    RateType = "average"
	RateTypeHistorical RateType = "historical"
	RateTypeManual     RateType = "manual"
)

// ExchangeRate is a cached conversion rate, uniquely keyed by
// (tenant, from, to, date, rateType).
type ExchangeRate struct {
	ID           string
	TenantID     string
	FromCurrency string
	ToCurrency   string
	RateDate     time.Time
	Rate         decimal.Decimal
	RateType     RateType
	Source       string
	CreatedAt    time.Time
}

// SameCurrency reports whether the pair needs no conversion.
func (r *ExchangeRate) SameCurrency() bool {
	return r.FromCurrency == r.ToCurrency
}
