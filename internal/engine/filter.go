package engine

// batchTag identifies a (block, sender) pair.
func batchTag(blockNumber, sender string) string {
	return blockNumber + "_" + sender
}

// FilterBatchSenders removes trades whose sender produced more than one swap
// leg inside the same block. A sender hitting several pools in one block is
// a contract or a batching bot, not the discretionary trade we alert on.
// This also drops a user who happened to fire two manual trades in one
// block; the feed gives no way to tell those apart.
//
// Counts come from the raw legs, not the stitched trades, so every routing
// hop of every transaction contributes to the tag.
func FilterBatchSenders(set *TradeSet, legs []RawSwapLeg) int {
	counts := make(map[string]int, len(legs))
	for _, leg := range legs {
		counts[batchTag(leg.BlockNumber, leg.Sender)]++
	}

	removed := 0
	for _, trade := range set.All() {
		if counts[batchTag(trade.BlockNumber, trade.Sender)] > 1 {
			set.Remove(trade.TxID)
			removed++
		}
	}
	return removed
}
