package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateCost(t *testing.T) {
	tests := []struct {
		name     string
		rate     string
		hours    string
		expected string
	}{
		{name: "whole hours", rate: "50.00", hours: "3", expected: "150.00"},
		{name: "half hours", rate: "75.00", hours: "2.5", expected: "187.50"},
		{name: "minimum duration", rate: "33.33", hours: "0.5", expected: "16.665"},
		{name: "float drift candidate", rate: "0.1", hours: "3", expected: "0.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateCost(decimal.RequireFromString(tt.rate), decimal.RequireFromString(tt.hours))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)), "got %s", got)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "187.50", FormatAmount(decimal.RequireFromString("187.5")))
	assert.Equal(t, "150.00", FormatAmount(decimal.NewFromInt(150)))
}

func TestParseAmount(t *testing.T) {
	amount, err := ParseAmount(" 49.99 ")
	require.NoError(t, err)
	assert.Equal(t, "49.99", amount.String())

	_, err = ParseAmount("")
	assert.Error(t, err)

	_, err = ParseAmount("abc")
	assert.Error(t, err)
}
