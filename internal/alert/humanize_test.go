package alert

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFloat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"0.5", "0.5"},
		{"999", "999"},
		{"1234.5", "1.23K"},
		{"2500000", "2.5M"},
		{"1500000000", "1.5B"},
		{"-2500", "-2.5K"},
	}
	for _, tt := range tests {
		got := Float(decimal.RequireFromString(tt.in))
		assert.Equal(t, tt.want, got, "Float(%s)", tt.in)
	}
}

func TestPrice(t *testing.T) {
	assert.Equal(t, "3000.46", Price(decimal.RequireFromString("3000.456")))
	assert.Equal(t, "1.01", Price(decimal.RequireFromString("1.005")))
	assert.Equal(t, "0", Price(decimal.Zero))
}
