package engine

import (
	"fmt"
	"log/slog"
)

// AliasMap remaps deprecated or renamed token tickers to their current form
// before any comparison or price lookup, e.g. LUNA -> LUNC.
type AliasMap map[string]string

// NewAliasMap validates that applying the map twice equals applying it once:
// no alias target may itself be an alias key.
func NewAliasMap(m map[string]string) (AliasMap, error) {
	for from, to := range m {
		if _, chained := m[to]; chained {
			return nil, fmt.Errorf("symbol alias %s -> %s chains into another alias", from, to)
		}
	}
	out := make(AliasMap, len(m))
	for from, to := range m {
		out[from] = to
	}
	return out, nil
}

func (a AliasMap) Canonical(symbol string) string {
	if to, ok := a[symbol]; ok {
		return to
	}
	return symbol
}

// Stitcher merges raw swap legs sharing a transaction id into one logical
// trade per transaction.
type Stitcher struct {
	aliases AliasMap
	logger  *slog.Logger
}

func NewStitcher(aliases AliasMap, logger *slog.Logger) *Stitcher {
	return &Stitcher{aliases: aliases, logger: logger}
}

// Stitch consumes legs in feed order (logIndex ascending) and returns the
// net two-sided trade per transaction.
//
// The first leg of a transaction seeds the trade. Each later leg of the same
// transaction is a routing hop: one side of the existing trade holds a
// negative amount that an equal-magnitude positive amount on the new leg
// must cancel, and the new leg's other side replaces it. The match is purely
// sign plus numeric equality, so a leg whose unrelated amount happens to
// equal the open side's magnitude can splice the wrong way; real multi-hop
// data has not shown a stricter rule that stays total, so an unmatched leg
// is dropped rather than guessed at.
func (s *Stitcher) Stitch(legs []RawSwapLeg) *TradeSet {
	set := NewTradeSet()

	for _, leg := range legs {
		leg.Symbol0 = s.aliases.Canonical(leg.Symbol0)
		leg.Symbol1 = s.aliases.Canonical(leg.Symbol1)

		trade, ok := set.Get(leg.TxID)
		if !ok {
			set.Put(&LogicalTrade{
				TxID:        leg.TxID,
				Symbol0:     leg.Symbol0,
				Amount0:     leg.Amount0,
				Symbol1:     leg.Symbol1,
				Amount1:     leg.Amount1,
				Sender:      leg.Sender,
				BlockNumber: leg.BlockNumber,
				Chain:       leg.Chain,
				Project:     leg.Project,
			})
			continue
		}

		if !s.splice(trade, leg) {
			s.logger.Warn("Dropping swap leg inconsistent with routing invariant",
				"tx_id", leg.TxID,
				"log_index", leg.LogIndex,
				"chain", leg.Chain,
				"project", leg.Project,
			)
		}
	}

	return set
}

// splice folds a follow-up leg into an existing trade. Returns false when
// neither side of the leg offsets the trade's open (negative) side.
func (s *Stitcher) splice(trade *LogicalTrade, leg RawSwapLeg) bool {
	if trade.Amount0.IsNegative() {
		switch {
		case leg.Amount0.IsPositive() && trade.Amount0.Equal(leg.Amount0.Neg()):
			trade.Amount0 = leg.Amount1
			trade.Symbol0 = leg.Symbol1
		case leg.Amount1.IsPositive() && trade.Amount0.Equal(leg.Amount1.Neg()):
			trade.Amount0 = leg.Amount0
			trade.Symbol0 = leg.Symbol0
		default:
			return false
		}
		return true
	}

	switch {
	case leg.Amount0.IsPositive() && trade.Amount1.Equal(leg.Amount0.Neg()):
		trade.Amount1 = leg.Amount1
		trade.Symbol1 = leg.Symbol1
	case leg.Amount1.IsPositive() && trade.Amount1.Equal(leg.Amount1.Neg()):
		trade.Amount1 = leg.Amount0
		trade.Symbol1 = leg.Symbol0
	default:
		return false
	}
	return true
}
