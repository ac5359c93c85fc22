package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewTableAppliesAliases(t *testing.T) {
	table := NewTable(
		map[string]decimal.Decimal{"ETH": dec("3000"), "BTC": dec("60000")},
		map[string]string{"WETH": "ETH", "cbETH": "ETH", "WBTC": "BTC"},
		nil,
	)

	for _, symbol := range []string{"WETH", "cbETH"} {
		price, ok := table.Get(symbol)
		require.True(t, ok, symbol)
		assert.True(t, price.Equal(dec("3000")))
	}
	price, ok := table.Get("WBTC")
	require.True(t, ok)
	assert.True(t, price.Equal(dec("60000")))
}

func TestNewTableSkipsAliasWithMissingSource(t *testing.T) {
	table := NewTable(
		map[string]decimal.Decimal{"BTC": dec("60000")},
		map[string]string{"WETH": "ETH"},
		nil,
	)

	_, ok := table.Get("WETH")
	assert.False(t, ok)
}

func TestNewTableOverridesWin(t *testing.T) {
	table := NewTable(
		map[string]decimal.Decimal{"USDT": dec("0.999"), "POLY": dec("0.15")},
		nil,
		map[string]decimal.Decimal{"USDT": dec("1.0"), "POLY": dec("0")},
	)

	price, ok := table.Get("USDT")
	require.True(t, ok)
	assert.True(t, price.Equal(dec("1")))

	price, ok = table.Get("POLY")
	require.True(t, ok, "a zero override is still priced, it blacklists the symbol")
	assert.True(t, price.IsZero())
}

func TestTableGetUnpriced(t *testing.T) {
	table := NewTable(nil, nil, nil)
	_, ok := table.Get("NOPE")
	assert.False(t, ok)
	assert.Equal(t, 0, table.Len())
}

func TestParseOverrides(t *testing.T) {
	out, err := ParseOverrides(map[string]string{"USDT": "1.0", "POLY": "0"})
	require.NoError(t, err)
	assert.True(t, out["USDT"].Equal(dec("1")))
	assert.True(t, out["POLY"].IsZero())

	_, err = ParseOverrides(map[string]string{"BAD": "not-a-number"})
	assert.Error(t, err)
}
