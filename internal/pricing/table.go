// Package pricing builds the reference price table used to value trades.
// The table is constructed once per refresh and never mutated afterwards,
// so batches running concurrently can share it without locking.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Table maps token symbols to unit prices in USD. Immutable after construction.
type Table struct {
	prices map[string]decimal.Decimal
}

// NewTable seeds a table from base prices, then applies aliases and
// overrides.
//
// Aliases copy an existing entry under another symbol (WETH priced as ETH);
// an alias whose source symbol is missing is skipped, the base feed simply
// doesn't carry it. Overrides force explicit prices and win over everything,
// including zero prices that blacklist known-noisy symbols.
func NewTable(base map[string]decimal.Decimal, aliases map[string]string, overrides map[string]decimal.Decimal) *Table {
	prices := make(map[string]decimal.Decimal, len(base)+len(aliases)+len(overrides))
	for symbol, price := range base {
		prices[symbol] = price
	}
	for symbol, source := range aliases {
		if price, ok := prices[source]; ok {
			prices[symbol] = price
		}
	}
	for symbol, price := range overrides {
		prices[symbol] = price
	}
	return &Table{prices: prices}
}

// Get returns the unit price for symbol. ok is false when the symbol is
// unpriced; a zero price with ok=true is an explicit override.
func (t *Table) Get(symbol string) (decimal.Decimal, bool) {
	price, ok := t.prices[symbol]
	return price, ok
}

func (t *Table) Len() int {
	return len(t.prices)
}

// ParseOverrides converts configured price strings into decimals.
func ParseOverrides(raw map[string]string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(raw))
	for symbol, s := range raw {
		price, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("price override for %s: %w", symbol, err)
		}
		out[symbol] = price
	}
	return out, nil
}
