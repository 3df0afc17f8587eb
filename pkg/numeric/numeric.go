// Package numeric parses the loosely formatted numbers found in the store sheet
// (comma decimals, trailing percent signs, blanks) and renders them with a fixed
// number of decimal places using shopspring/decimal.
package numeric

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Parse converts a raw sheet cell into a float64.
// Accepts formats like "12.5", "12,5", "12,5%" and " 7 ".
// ok is false when the cell is blank or not a number.
func Parse(raw string) (value float64, ok bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if cleaned == "" {
		return 0, false
	}

	// decimal rejects NaN and Inf spellings that strconv would accept
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// ToNumber is Parse with every failure mapped to 0.
func ToNumber(raw string) float64 {
	v, _ := Parse(raw)
	return v
}

// IsPositive reports whether raw parses to a number greater than zero.
func IsPositive(raw string) bool {
	v, ok := Parse(raw)
	return ok && v > 0
}

// Round rounds v half away from zero to the given number of places.
func Round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Format renders v with exactly the given number of places ("35.0").
func Format(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

// FormatSigned renders v with an explicit sign for positive values ("+5.0", "-2.3", "0.0").
func FormatSigned(v float64, places int32) string {
	d := decimal.NewFromFloat(v).Round(places)
	if d.IsPositive() {
		return "+" + d.StringFixed(places)
	}
	return d.StringFixed(places)
}

// Percent renders v as a one-decimal percentage ("35.0%").
func Percent(v float64) string {
	return Format(v, 1) + "%"
}
