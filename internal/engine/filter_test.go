package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterBatchSendersRemovesRepeatedSender(t *testing.T) {
	legs := []RawSwapLeg{
		{TxID: "0x1", Symbol0: "A", Amount0: dec("1"), Symbol1: "B", Amount1: dec("-1"), Sender: "0xbot", BlockNumber: "500"},
		{TxID: "0x2", Symbol0: "C", Amount0: dec("2"), Symbol1: "D", Amount1: dec("-2"), Sender: "0xbot", BlockNumber: "500"},
		{TxID: "0x3", Symbol0: "E", Amount0: dec("3"), Symbol1: "F", Amount1: dec("-3"), Sender: "0xuser", BlockNumber: "500"},
	}
	set := NewStitcher(nil, testLogger()).Stitch(legs)
	require.Equal(t, 3, set.Len())

	removed := FilterBatchSenders(set, legs)

	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, set.Len())
	_, ok := set.Get("0x3")
	assert.True(t, ok)
}

func TestFilterBatchSendersCountsRawLegs(t *testing.T) {
	// A multi-hop transaction contributes one leg per hop to its own
	// (block, sender) tag, so it is filtered along with real batchers.
	legs := []RawSwapLeg{
		{TxID: "0x4", LogIndex: 1, Symbol0: "USDC", Amount0: dec("100"), Symbol1: "WETH", Amount1: dec("-1"), Sender: "0xuser", BlockNumber: "501"},
		{TxID: "0x4", LogIndex: 2, Symbol0: "WETH", Amount0: dec("1"), Symbol1: "PEPE", Amount1: dec("-999"), Sender: "0xuser", BlockNumber: "501"},
	}
	set := NewStitcher(nil, testLogger()).Stitch(legs)
	require.Equal(t, 1, set.Len())

	removed := FilterBatchSenders(set, legs)

	assert.Equal(t, 1, removed)
	assert.Equal(t, 0, set.Len())
}

func TestFilterBatchSendersSameSenderDifferentBlocks(t *testing.T) {
	legs := []RawSwapLeg{
		{TxID: "0x5", Symbol0: "A", Amount0: dec("1"), Symbol1: "B", Amount1: dec("-1"), Sender: "0xuser", BlockNumber: "600"},
		{TxID: "0x6", Symbol0: "C", Amount0: dec("2"), Symbol1: "D", Amount1: dec("-2"), Sender: "0xuser", BlockNumber: "601"},
	}
	set := NewStitcher(nil, testLogger()).Stitch(legs)

	removed := FilterBatchSenders(set, legs)

	assert.Equal(t, 0, removed)
	assert.Equal(t, 2, set.Len())
}
