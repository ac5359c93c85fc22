package engine

import (
	"github.com/dexwatch/swap-tracker/pkg/common/enum"
	"github.com/shopspring/decimal"
)

// RawSwapLeg is one pool-level swap event as reported by the data source.
// A multi-hop trade routed through intermediate pools produces several legs
// sharing the same transaction id.
//
// Sign convention follows the feed: amounts are pool deltas, so a positive
// amount flows into the pool (sold by the trader) and a negative amount
// flows out of the pool to the trader (bought).
type RawSwapLeg struct {
	TxID        string
	LogIndex    int64
	Symbol0     string
	Amount0     decimal.Decimal
	Symbol1     string
	Amount1     decimal.Decimal
	Sender      string
	BlockNumber string
	Chain       string
	Project     string
}

// LogicalTrade is the reconciled trade for one transaction: after stitching
// it carries exactly one net incoming and one net outgoing side.
type LogicalTrade struct {
	TxID        string
	Symbol0     string
	Amount0     decimal.Decimal
	Symbol1     string
	Amount1     decimal.Decimal
	Sender      string
	BlockNumber string
	Chain       string
	Project     string
	TradeType   enum.TradeType

	// Valuation output. A nil price means the symbol is unpriced, which is
	// distinct from a zero price override.
	Value0       decimal.Decimal
	Value1       decimal.Decimal
	Symbol0Price *decimal.Decimal
	Symbol1Price *decimal.Decimal
	Value        decimal.Decimal
}

// TradeSet is a tx_id keyed collection of trades preserving first-seen order.
type TradeSet struct {
	order  []string
	trades map[string]*LogicalTrade
}

func NewTradeSet() *TradeSet {
	return &TradeSet{trades: make(map[string]*LogicalTrade)}
}

func (s *TradeSet) Get(txID string) (*LogicalTrade, bool) {
	tr, ok := s.trades[txID]
	return tr, ok
}

func (s *TradeSet) Put(tr *LogicalTrade) {
	if _, ok := s.trades[tr.TxID]; !ok {
		s.order = append(s.order, tr.TxID)
	}
	s.trades[tr.TxID] = tr
}

func (s *TradeSet) Remove(txID string) {
	if _, ok := s.trades[txID]; !ok {
		return
	}
	delete(s.trades, txID)
	for i, id := range s.order {
		if id == txID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *TradeSet) Len() int {
	return len(s.trades)
}

// All returns the trades in first-seen order.
func (s *TradeSet) All() []*LogicalTrade {
	out := make([]*LogicalTrade, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.trades[id])
	}
	return out
}
