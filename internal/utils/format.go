package utils

import (
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotAvailable is rendered for values that are missing or not yet defined.
const NotAvailable = "N/A"

var printer = message.NewPrinter(language.English)

// FormatCurrency renders a value as US dollars with digit grouping, e.g. "$12,345.68".
// Missing or non-numeric values render as "N/A", or "$0.00" when defaultNA is false.
func FormatCurrency(value interface{}, defaultNA bool) string {
	f, ok := toFloat(value)
	if !ok {
		if defaultNA {
			return NotAvailable
		}
		return "$0.00"
	}
	return printer.Sprintf("$%.2f", f)
}

// FormatPercentage renders a value that is already expressed in percent, e.g. "25.50%".
func FormatPercentage(value interface{}, defaultNA bool) string {
	f, ok := toFloat(value)
	if !ok {
		if defaultNA {
			return NotAvailable
		}
		return "0.00%"
	}
	return printer.Sprintf("%.2f%%", f)
}

// FormatRatioAsPercentage renders a change ratio (0.05) as a percentage ("5.00%").
func FormatRatioAsPercentage(ratio decimal.NullDecimal) string {
	if !ratio.Valid {
		return NotAvailable
	}
	return FormatPercentage(ratio.Decimal.Mul(decimal.NewFromInt(100)), true)
}

// FormatDecimal renders an optional value with a fixed number of places.
func FormatDecimal(value decimal.NullDecimal, places int32) string {
	if !value.Valid {
		return NotAvailable
	}
	return value.Decimal.StringFixed(places)
}

// FormatCount renders an integer amount with digit grouping, e.g. "1,250,000".
func FormatCount(value int64) string {
	return printer.Sprintf("%d", value)
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case decimal.Decimal:
		return v.InexactFloat64(), true
	case decimal.NullDecimal:
		if !v.Valid {
			return 0, false
		}
		return v.Decimal.InexactFloat64(), true
	case *float64:
		if v == nil {
			return 0, false
		}
		return *v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
