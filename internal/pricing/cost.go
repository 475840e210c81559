// Package pricing derives monetary amounts for service requests.
package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the number of decimal places amounts are presented with.
const CurrencyPlaces = 2

// CalculateCost multiplies an hourly rate by a duration in hours. The result
// is exact; rounding only happens when formatting.
func CalculateCost(hourlyRate, durationHours decimal.Decimal) decimal.Decimal {
	return hourlyRate.Mul(durationHours)
}

// FormatAmount renders an amount with two decimal places, e.g. "187.50".
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(CurrencyPlaces)
}

// ParseAmount parses a decimal amount from user input.
func ParseAmount(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("amount is empty")
	}
	return decimal.NewFromString(trimmed)
}
