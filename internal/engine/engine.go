// Package engine reconciles raw pool-level swap legs into logical trades:
// it stitches multi-hop legs by transaction, filters batch senders, prices
// both sides against a reference table and classifies the result.
//
// The engine holds no state across batches and performs no I/O; every
// operation is total over its inputs. Concurrent batches must each use
// their own Engine instance.
package engine

import "log/slog"

type Engine struct {
	stitcher *Stitcher
	prices   PriceTable
	logger   *slog.Logger
}

func New(aliases AliasMap, prices PriceTable, logger *slog.Logger) *Engine {
	return &Engine{
		stitcher: NewStitcher(aliases, logger),
		prices:   prices,
		logger:   logger,
	}
}

// Process runs one batch of legs through the full pipeline and returns the
// surviving trades, valued and classified, in first-seen order.
func (e *Engine) Process(legs []RawSwapLeg) []*LogicalTrade {
	set := e.stitcher.Stitch(legs)
	stitched := set.Len()

	removed := FilterBatchSenders(set, legs)
	if removed > 0 {
		e.logger.Debug("Filtered batch-sender trades", "removed", removed, "stitched", stitched)
	}

	trades := set.All()
	for _, trade := range trades {
		Valuate(trade, e.prices)
		Classify(trade)
	}
	return trades
}
