package alert

import (
	"math"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Float renders a numeric amount for display with a magnitude suffix:
// 1234.5 -> "1.23K", 2500000 -> "2.5M". Small values keep comma grouping.
func Float(d decimal.Decimal) string {
	f := d.InexactFloat64()
	abs := math.Abs(f)

	switch {
	case abs >= 1e9:
		return humanize.CommafWithDigits(f/1e9, 2) + "B"
	case abs >= 1e6:
		return humanize.CommafWithDigits(f/1e6, 2) + "M"
	case abs >= 1e3:
		return humanize.CommafWithDigits(f/1e3, 2) + "K"
	default:
		return humanize.CommafWithDigits(f, 2)
	}
}

// Price renders a unit price rounded to 2 decimals. Unpriced symbols must
// never reach this function; callers render the absent marker instead.
func Price(d decimal.Decimal) string {
	return d.Round(2).String()
}
