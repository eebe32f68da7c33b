// Package mathutil holds the small numeric helpers shared by the calculators.
package mathutil

import (
	"math"

	"github.com/iwvelando/finance-calculators/pkg/constants"
)

// Round rounds to whole cents. Calculator outputs are rounded with it before
// they are compared or reported.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// RoundTo rounds to the given number of decimal places; places below one
// round to an integer.
func RoundTo(val float64, places int) float64 {
	if places < 1 {
		return math.Round(val)
	}
	scale := math.Pow10(places)
	return math.Round(val*scale) / scale
}

// WithinTolerance reports whether a and b differ by no more than tolerance.
func WithinTolerance(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

// Max returns the larger of a and b.
func Max(a, b float64) float64 { return max(a, b) }

// CalculatePercentage expresses part as a percentage of whole. A zero whole
// yields zero.
func CalculatePercentage(part, whole float64) float64 {
	return SafeDivide(part, whole) * constants.PercentageMultiplier
}

// ApplyPercentage returns pct percent of value.
func ApplyPercentage(value, pct float64) float64 {
	return value * pct / constants.PercentageMultiplier
}
