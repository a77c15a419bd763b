package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	f := 42.5
	tests := []struct {
		name      string
		value     interface{}
		defaultNA bool
		expected  string
	}{
		{"grouped float", 12345.678, true, "$12,345.68"},
		{"integer", 2000000, true, "$2,000,000.00"},
		{"decimal", decimal.RequireFromString("0.42"), true, "$0.42"},
		{"pointer", &f, true, "$42.50"},
		{"numeric string", "1500", true, "$1,500.00"},
		{"nil with N/A", nil, true, "N/A"},
		{"nil without N/A", nil, false, "$0.00"},
		{"garbage string", "abc", true, "N/A"},
		{"invalid null decimal", decimal.NullDecimal{}, false, "$0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatCurrency(tt.value, tt.defaultNA))
		})
	}
}

func TestFormatPercentage(t *testing.T) {
	assert.Equal(t, "25.50%", FormatPercentage(25.5, true))
	assert.Equal(t, "-3.25%", FormatPercentage(-3.25, true))
	assert.Equal(t, "N/A", FormatPercentage(nil, true))
	assert.Equal(t, "0.00%", FormatPercentage(nil, false))
}

func TestFormatRatioAsPercentage(t *testing.T) {
	ratio := decimal.NewNullDecimal(decimal.RequireFromString("0.05"))
	assert.Equal(t, "5.00%", FormatRatioAsPercentage(ratio))
	assert.Equal(t, "N/A", FormatRatioAsPercentage(decimal.NullDecimal{}))
}

func TestFormatDecimal(t *testing.T) {
	value := decimal.NewNullDecimal(decimal.RequireFromString("0.123456"))
	assert.Equal(t, "0.1235", FormatDecimal(value, 4))
	assert.Equal(t, "0.12", FormatDecimal(value, 2))
	assert.Equal(t, "N/A", FormatDecimal(decimal.NullDecimal{}, 2))
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "1,250,000", FormatCount(1250000))
	assert.Equal(t, "999", FormatCount(999))
}
