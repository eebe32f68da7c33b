// Package format renders numbers for reports and terminal output.
package format

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency renders dollars with thousands separators and cents, e.g. "-$1,234.56".
// Amounts that round to zero cents never carry a sign.
func Currency(amount float64) string {
	cents := math.Round(amount * 100)
	if cents < 0 {
		return "-$" + english().Sprintf("%.2f", -cents/100)
	}
	return "$" + english().Sprintf("%.2f", math.Abs(cents)/100)
}

// WholeCurrency renders dollars rounded to the nearest dollar, e.g. "$12,500".
func WholeCurrency(amount float64) string {
	dollars := math.Round(amount)
	if dollars < 0 {
		return "-$" + english().Sprintf("%d", int64(-dollars))
	}
	return "$" + english().Sprintf("%d", int64(math.Abs(dollars)))
}

func english() *message.Printer {
	return message.NewPrinter(language.English)
}
