package engine

import (
	"strings"

	"github.com/dexwatch/swap-tracker/pkg/common/enum"
	"github.com/shopspring/decimal"
)

// PriceTable resolves a token symbol to its unit price in the reference
// currency. The second return is false when the symbol is unpriced.
type PriceTable interface {
	Get(symbol string) (decimal.Decimal, bool)
}

// mainstreamKeywords mark major reference assets: dollar stables, bitcoin,
// ether and the legacy pax stables.
var mainstreamKeywords = []string{"usd", "btc", "eth", "pax"}

func IsMainstreamToken(symbol string) bool {
	lower := strings.ToLower(symbol)
	for _, kw := range mainstreamKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Classify assigns the trade type from the final stitched symbols.
func Classify(trade *LogicalTrade) {
	if IsMainstreamToken(trade.Symbol0) && IsMainstreamToken(trade.Symbol1) {
		trade.TradeType = enum.TradeTypeMainstream
	} else {
		trade.TradeType = enum.TradeTypeAlt
	}
}

// Valuate prices both sides of the trade and derives its headline value.
//
// When both sides are priced the headline is the smaller absolute side:
// a stale or wrong price on one leg then understates rather than inflates
// the alert. When only one side is priced the priced side wins.
func Valuate(trade *LogicalTrade, prices PriceTable) {
	if price, ok := prices.Get(trade.Symbol0); ok {
		p := price
		trade.Symbol0Price = &p
		trade.Value0 = price.Mul(trade.Amount0)
	} else {
		trade.Symbol0Price = nil
		trade.Value0 = decimal.Zero
	}

	if price, ok := prices.Get(trade.Symbol1); ok {
		p := price
		trade.Symbol1Price = &p
		trade.Value1 = price.Mul(trade.Amount1)
	} else {
		trade.Symbol1Price = nil
		trade.Value1 = decimal.Zero
	}

	abs0 := trade.Value0.Abs()
	abs1 := trade.Value1.Abs()
	if abs0.IsPositive() && abs1.IsPositive() {
		trade.Value = decimal.Min(abs0, abs1).Round(2)
	} else {
		trade.Value = decimal.Max(abs0, abs1).Round(2)
	}
}
