// Package tracker drives the poll cycle: one Runner per project/chain pair
// fetches the cursor, the latest confirmed block and the swap legs in
// between, runs the reconciliation engine and hands alerts to the sinks.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dexwatch/swap-tracker/internal/alert"
	"github.com/dexwatch/swap-tracker/internal/engine"
	"github.com/dexwatch/swap-tracker/internal/pricing"
	"github.com/dexwatch/swap-tracker/internal/subgraph"
	"github.com/dexwatch/swap-tracker/pkg/store/cursorstore"
)

// LegSource yields raw swap legs and the latest confirmed block for one
// project/chain endpoint.
type LegSource interface {
	LatestBlock(ctx context.Context, since time.Time) (string, error)
	Swaps(ctx context.Context, fromBlock, toBlock string, pageSize int) ([]subgraph.Swap, error)
}

// TableProvider yields the current reference price table.
type TableProvider interface {
	Table(ctx context.Context) (*pricing.Table, error)
}

// AlertSink receives every alerted trade. Delivery is best effort; sink
// errors are logged, not propagated, since alert delivery reliability is
// out of the engine's hands.
type AlertSink interface {
	Publish(ctx context.Context, a *alert.Alert) error
}

type RunnerOptions struct {
	Project         string
	Chain           string
	PageSize        int
	ConfirmationLag time.Duration
	CursorTTL       time.Duration
}

type Runner struct {
	opts     RunnerOptions
	source   LegSource
	cursors  cursorstore.Store
	prices   TableProvider
	aliases  engine.AliasMap
	selector *alert.Selector
	sinks    []AlertSink
	logger   *slog.Logger
}

func NewRunner(
	opts RunnerOptions,
	source LegSource,
	cursors cursorstore.Store,
	prices TableProvider,
	aliases engine.AliasMap,
	selector *alert.Selector,
	sinks []AlertSink,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		opts:     opts,
		source:   source,
		cursors:  cursors,
		prices:   prices,
		aliases:  aliases,
		selector: selector,
		sinks:    sinks,
		logger: logger.With(
			slog.String("project", opts.Project),
			slog.String("chain", opts.Chain),
		),
	}
}

// RunBatch executes one poll cycle. Any upstream failure returns before a
// single alert is published and leaves the cursor untouched, so the same
// range is retried next cycle. All intermediate state is local to the call.
func (r *Runner) RunBatch(ctx context.Context) error {
	prev, found, err := r.cursors.Get(r.opts.Project, r.opts.Chain)
	if err != nil {
		return fmt.Errorf("read cursor: %w", err)
	}

	since := time.Now().Add(-r.opts.ConfirmationLag)
	latest, err := r.source.LatestBlock(ctx, since)
	if err != nil {
		if errors.Is(err, subgraph.ErrNoRecentBlock) {
			r.logger.Debug("No confirmed swap activity in window")
			return nil
		}
		return fmt.Errorf("latest block: %w", err)
	}

	if !found {
		// Nothing to diff against on the first cycle; seed the cursor and
		// start alerting from the next one.
		r.logger.Info("No prior cursor, seeding", "block", latest)
		return r.cursors.Set(r.opts.Project, r.opts.Chain, latest, r.opts.CursorTTL)
	}

	prevNum, err := strconv.ParseUint(prev, 10, 64)
	if err != nil {
		return fmt.Errorf("parse stored cursor %q: %w", prev, err)
	}
	latestNum, err := strconv.ParseUint(latest, 10, 64)
	if err != nil {
		return fmt.Errorf("parse latest block %q: %w", latest, err)
	}
	if latestNum <= prevNum {
		// Keep the cursor alive while the chain idles.
		return r.cursors.Set(r.opts.Project, r.opts.Chain, prev, r.opts.CursorTTL)
	}

	table, err := r.prices.Table(ctx)
	if err != nil {
		return err
	}

	rows, err := r.source.Swaps(ctx, prev, latest, r.opts.PageSize)
	if err != nil {
		return fmt.Errorf("fetch swaps: %w", err)
	}
	r.logger.Info("Processing block range",
		"from", prev, "to", latest, "legs", len(rows))

	legs := make([]engine.RawSwapLeg, 0, len(rows))
	for _, row := range rows {
		legs = append(legs, engine.RawSwapLeg{
			TxID:        row.TxID,
			LogIndex:    row.LogIndex,
			Symbol0:     row.Symbol0,
			Amount0:     row.Amount0,
			Symbol1:     row.Symbol1,
			Amount1:     row.Amount1,
			Sender:      row.Origin,
			BlockNumber: row.BlockNumber,
			Chain:       r.opts.Chain,
			Project:     r.opts.Project,
		})
	}

	eng := engine.New(r.aliases, table, r.logger)
	trades := eng.Process(legs)

	alerted := 0
	for _, trade := range trades {
		a, ok, err := r.selector.Evaluate(ctx, trade)
		if err != nil {
			r.logger.Error("Alert evaluation failed", "tx_id", trade.TxID, "err", err)
			continue
		}
		if !ok {
			continue
		}
		for _, sink := range r.sinks {
			if err := sink.Publish(ctx, a); err != nil {
				r.logger.Error("Alert delivery failed", "tx_id", a.View.TxID, "err", err)
			}
		}
		alerted++
	}

	if err := r.cursors.Set(r.opts.Project, r.opts.Chain, latest, r.opts.CursorTTL); err != nil {
		return fmt.Errorf("advance cursor: %w", err)
	}

	r.logger.Info("Batch complete",
		"trades", len(trades), "alerted", alerted, "cursor", latest)
	return nil
}
