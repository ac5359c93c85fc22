package alert

import (
	"fmt"

	"github.com/dexwatch/swap-tracker/internal/engine"
	"github.com/dexwatch/swap-tracker/pkg/common/enum"
)

// AlertView is the fully formatted rendering context handed to the
// templates. It is derived from a LogicalTrade once, after normalization;
// keeping typed values and display strings in separate structures means
// formatting can never corrupt the numbers it was derived from.
type AlertView struct {
	TxID      string
	Chain     string
	Project   string
	Sender    string
	TradeType enum.TradeType

	// Side 0 is always the bought asset, side 1 the sold one.
	Symbol0      string
	Amount0      string
	Value0       string
	Symbol0Price string // "" when unpriced, rendered as "-"
	OriginValue0 float64

	Symbol1      string
	Amount1      string
	Value1       string
	Symbol1Price string
	OriginValue1 float64

	Pair       string
	Value      string
	AccountTag string
	Twitter    string
	TxURL      string
}

// Normalize returns a copy of the trade with side 0 as the bought asset and
// side 1 as the sold asset, both amounts non-negative.
//
// Amounts are pool deltas, so a positive Amount0 means side 0 went into
// the pool: the trader sold it, and the sides must swap to read
// "sold symbol1 -> bought symbol0".
func Normalize(trade *engine.LogicalTrade) *engine.LogicalTrade {
	out := *trade
	if trade.Amount0.IsPositive() {
		out.Symbol0, out.Symbol1 = trade.Symbol1, trade.Symbol0
		out.Amount0, out.Amount1 = trade.Amount1, trade.Amount0
		out.Value0, out.Value1 = trade.Value1, trade.Value0
		out.Symbol0Price, out.Symbol1Price = trade.Symbol1Price, trade.Symbol0Price
	}
	out.Amount0 = out.Amount0.Abs()
	out.Amount1 = out.Amount1.Abs()
	return &out
}

// NewView formats a normalized trade into the rendering context. The tag is
// optional enrichment; a zero Tag renders without the user line.
func NewView(trade *engine.LogicalTrade, txURLPattern string, tag Tag) *AlertView {
	view := &AlertView{
		TxID:      trade.TxID,
		Chain:     trade.Chain,
		Project:   trade.Project,
		Sender:    trade.Sender,
		TradeType: trade.TradeType,

		Symbol0:      trade.Symbol0,
		Amount0:      Float(trade.Amount0),
		Value0:       Float(trade.Value0.Abs()),
		OriginValue0: trade.Value0.Abs().InexactFloat64(),

		Symbol1:      trade.Symbol1,
		Amount1:      Float(trade.Amount1),
		Value1:       Float(trade.Value1.Abs()),
		OriginValue1: trade.Value1.Abs().InexactFloat64(),

		Pair:       fmt.Sprintf("$%s swap_to $%s", trade.Symbol1, trade.Symbol0),
		Value:      Float(trade.Value),
		AccountTag: tag.DisplayTag,
		Twitter:    tag.Twitter,
	}

	if trade.Symbol0Price != nil {
		view.Symbol0Price = Price(*trade.Symbol0Price)
	}
	if trade.Symbol1Price != nil {
		view.Symbol1Price = Price(*trade.Symbol1Price)
	}
	if txURLPattern != "" {
		view.TxURL = fmt.Sprintf(txURLPattern, trade.TxID)
	}
	return view
}
