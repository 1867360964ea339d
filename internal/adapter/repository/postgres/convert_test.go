package postgres

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNumericRoundTrip(t *testing.T) {
	cases := []string{"0", "100", "-42.5", "1234.56", "0.0001"}

	for _, s := range cases {
		want := decimal.RequireFromString(s)
		got := numericToDecimal(decimalToNumeric(want))
		if !got.Equal(want) {
			t.Errorf("round trip %s: got %s", want, got)
		}
	}
}

func TestNumericToDecimalNull(t *testing.T) {
	if got := numericToDecimalPtr(decimalPtrToNumeric(nil)); got != nil {
		t.Fatalf("expected nil for null numeric, got %s", got)
	}

	d := decimal.RequireFromString("19.99")
	got := numericToDecimalPtr(decimalPtrToNumeric(&d))
	if got == nil || !got.Equal(d) {
		t.Fatalf("expected %s, got %v", d, got)
	}
}
