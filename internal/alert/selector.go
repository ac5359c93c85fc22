// Package alert turns reconciled trades into rendered alert messages:
// threshold gating, buy/sell normalization, humanized formatting and
// per-locale template rendering.
package alert

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dexwatch/swap-tracker/internal/engine"
	"github.com/dexwatch/swap-tracker/pkg/common/enum"
	"github.com/shopspring/decimal"
)

// Thresholds are the minimum headline values, per trade type, for a trade
// to be alerted at all.
type Thresholds struct {
	Mainstream decimal.Decimal
	Alt        decimal.Decimal
}

func ParseThresholds(mainstream, alt string) (Thresholds, error) {
	m, err := decimal.NewFromString(mainstream)
	if err != nil {
		return Thresholds{}, fmt.Errorf("mainstream threshold: %w", err)
	}
	a, err := decimal.NewFromString(alt)
	if err != nil {
		return Thresholds{}, fmt.Errorf("alt threshold: %w", err)
	}
	return Thresholds{Mainstream: m, Alt: a}, nil
}

// Meets reports whether the trade's value reaches its type's threshold.
func (t Thresholds) Meets(trade *engine.LogicalTrade) bool {
	switch trade.TradeType {
	case enum.TradeTypeMainstream:
		return trade.Value.GreaterThanOrEqual(t.Mainstream)
	default:
		return trade.Value.GreaterThanOrEqual(t.Alt)
	}
}

// Alert is one alerted trade with its rendered per-locale messages.
type Alert struct {
	View     *AlertView
	Messages map[string]string
}

// Selector gates trades on value thresholds and produces rendered alerts.
type Selector struct {
	thresholds Thresholds
	tags       TagLookup
	renderer   *Renderer
	explorers  map[string]string // chain -> tx URL pattern
	logger     *slog.Logger
}

func NewSelector(thresholds Thresholds, tags TagLookup, renderer *Renderer, explorers map[string]string, logger *slog.Logger) *Selector {
	if tags == nil {
		tags = StaticTagLookup{}
	}
	return &Selector{
		thresholds: thresholds,
		tags:       tags,
		renderer:   renderer,
		explorers:  explorers,
		logger:     logger,
	}
}

// Evaluate decides whether to alert on the trade. Below-threshold trades
// return (nil, false, nil) and are never partially emitted. A tag lookup
// failure degrades to an untagged alert.
func (s *Selector) Evaluate(ctx context.Context, trade *engine.LogicalTrade) (*Alert, bool, error) {
	if !s.thresholds.Meets(trade) {
		return nil, false, nil
	}

	normalized := Normalize(trade)

	tag, err := s.tags.Get(ctx, normalized.Sender)
	if err != nil {
		s.logger.Warn("Address tag lookup failed", "address", normalized.Sender, "err", err)
		tag = Tag{}
	}

	view := NewView(normalized, s.explorers[normalized.Chain], tag)
	messages, err := s.renderer.RenderAll(view)
	if err != nil {
		return nil, false, err
	}

	return &Alert{View: view, Messages: messages}, true, nil
}
