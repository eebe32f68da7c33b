package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Percent formats a percentage value with two decimals (e.g., "12.35%").
func Percent(value float64) string {
	return fmt.Sprintf("%.2f%%", value)
}

// PercentPlaces formats a percentage value with the given number of decimals.
func PercentPlaces(value float64, places int) string {
	return strconv.FormatFloat(value, 'f', places, 64) + "%"
}

// Ratio formats a coverage ratio (e.g., "1.25x").
func Ratio(value float64) string {
	return fmt.Sprintf("%.2fx", value)
}

// Number formats a value with thousands separators and no decimals.
func Number(value float64) string {
	return english().Sprintf("%d", int64(math.Round(value)))
}

// Decimal formats a value with thousands separators and the given number of decimals.
func Decimal(value float64, places int) string {
	if places < 0 {
		places = 0
	}
	return english().Sprintf(fmt.Sprintf("%%.%df", places), value)
}

// Label converts an option value such as "mixed-use" into "Mixed Use".
func Label(value string) string {
	if value == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(value, "-", " "))
}

// Bool formats a boolean as "Yes" or "No".
func Bool(value bool) string {
	if value {
		return "Yes"
	}
	return "No"
}
