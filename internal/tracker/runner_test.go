package tracker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dexwatch/swap-tracker/internal/alert"
	"github.com/dexwatch/swap-tracker/internal/pricing"
	"github.com/dexwatch/swap-tracker/internal/subgraph"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeLegSource struct {
	latest    string
	latestErr error
	swaps     []subgraph.Swap
	swapsErr  error

	swapsCalled bool
}

func (f *fakeLegSource) LatestBlock(context.Context, time.Time) (string, error) {
	return f.latest, f.latestErr
}

func (f *fakeLegSource) Swaps(context.Context, string, string, int) ([]subgraph.Swap, error) {
	f.swapsCalled = true
	return f.swaps, f.swapsErr
}

type fakeCursorStore struct {
	blocks map[string]string
	setErr error
}

func newFakeCursorStore() *fakeCursorStore {
	return &fakeCursorStore{blocks: make(map[string]string)}
}

func (f *fakeCursorStore) Get(project, chain string) (string, bool, error) {
	block, ok := f.blocks[project+"/"+chain]
	return block, ok, nil
}

func (f *fakeCursorStore) Set(project, chain, block string, _ time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.blocks[project+"/"+chain] = block
	return nil
}

func (f *fakeCursorStore) Close() error { return nil }

type fakeTableProvider struct {
	table *pricing.Table
	err   error
}

func (f *fakeTableProvider) Table(context.Context) (*pricing.Table, error) {
	return f.table, f.err
}

type captureSink struct {
	alerts []*alert.Alert
	err    error
}

func (c *captureSink) Publish(_ context.Context, a *alert.Alert) error {
	c.alerts = append(c.alerts, a)
	return c.err
}

func usdTable(t *testing.T) *pricing.Table {
	t.Helper()
	return pricing.NewTable(map[string]decimal.Decimal{
		"USDC": decimal.RequireFromString("1"),
	}, nil, nil)
}

func largeSwap(txID string) subgraph.Swap {
	return subgraph.Swap{
		TxID:        txID,
		LogIndex:    1,
		Symbol0:     "USDC",
		Amount0:     decimal.RequireFromString("200000"),
		Symbol1:     "PEPE",
		Amount1:     decimal.RequireFromString("-1000000"),
		Origin:      "0xsender",
		BlockNumber: "150",
	}
}

func newTestRunner(t *testing.T, source *fakeLegSource, cursors *fakeCursorStore, prices *fakeTableProvider, sinks ...AlertSink) *Runner {
	t.Helper()
	thresholds, err := alert.ParseThresholds("10000000", "150000")
	require.NoError(t, err)
	renderer, err := alert.NewRenderer([]string{"en"})
	require.NoError(t, err)
	selector := alert.NewSelector(thresholds, nil, renderer, nil, testLogger())

	return NewRunner(
		RunnerOptions{
			Project:         "uniswap-v3",
			Chain:           "ethereum",
			PageSize:        1000,
			ConfirmationLag: 600 * time.Second,
			CursorTTL:       time.Hour,
		},
		source, cursors, prices, nil, selector, sinks, testLogger(),
	)
}

func TestRunBatchSeedsCursorOnFirstRun(t *testing.T) {
	source := &fakeLegSource{latest: "200", swaps: []subgraph.Swap{largeSwap("0x1")}}
	cursors := newFakeCursorStore()
	sink := &captureSink{}
	r := newTestRunner(t, source, cursors, &fakeTableProvider{table: usdTable(t)}, sink)

	require.NoError(t, r.RunBatch(context.Background()))

	assert.Equal(t, "200", cursors.blocks["uniswap-v3/ethereum"])
	assert.False(t, source.swapsCalled, "first run only seeds the cursor")
	assert.Empty(t, sink.alerts)
}

func TestRunBatchProcessesRangeAndAdvancesCursor(t *testing.T) {
	source := &fakeLegSource{latest: "200", swaps: []subgraph.Swap{largeSwap("0x1")}}
	cursors := newFakeCursorStore()
	cursors.blocks["uniswap-v3/ethereum"] = "100"
	sink := &captureSink{}
	r := newTestRunner(t, source, cursors, &fakeTableProvider{table: usdTable(t)}, sink)

	require.NoError(t, r.RunBatch(context.Background()))

	require.Len(t, sink.alerts, 1)
	assert.Equal(t, "0x1", sink.alerts[0].View.TxID)
	assert.Equal(t, "200", cursors.blocks["uniswap-v3/ethereum"])
}

func TestRunBatchNoRecentBlockIsIdle(t *testing.T) {
	source := &fakeLegSource{latestErr: subgraph.ErrNoRecentBlock}
	cursors := newFakeCursorStore()
	cursors.blocks["uniswap-v3/ethereum"] = "100"
	r := newTestRunner(t, source, cursors, &fakeTableProvider{table: usdTable(t)})

	require.NoError(t, r.RunBatch(context.Background()))
	assert.Equal(t, "100", cursors.blocks["uniswap-v3/ethereum"])
}

func TestRunBatchStaleLatestRefreshesCursor(t *testing.T) {
	source := &fakeLegSource{latest: "100"}
	cursors := newFakeCursorStore()
	cursors.blocks["uniswap-v3/ethereum"] = "100"
	r := newTestRunner(t, source, cursors, &fakeTableProvider{table: usdTable(t)})

	require.NoError(t, r.RunBatch(context.Background()))

	assert.Equal(t, "100", cursors.blocks["uniswap-v3/ethereum"])
	assert.False(t, source.swapsCalled)
}

func TestRunBatchUpstreamFailureLeavesCursor(t *testing.T) {
	source := &fakeLegSource{latest: "200", swapsErr: errors.New("subgraph down")}
	cursors := newFakeCursorStore()
	cursors.blocks["uniswap-v3/ethereum"] = "100"
	sink := &captureSink{}
	r := newTestRunner(t, source, cursors, &fakeTableProvider{table: usdTable(t)}, sink)

	require.Error(t, r.RunBatch(context.Background()))

	assert.Equal(t, "100", cursors.blocks["uniswap-v3/ethereum"], "cursor must not advance on failure")
	assert.Empty(t, sink.alerts, "nothing is published when the batch fails")
}

func TestRunBatchPriceRefreshFailureAbandonsBatch(t *testing.T) {
	source := &fakeLegSource{latest: "200", swaps: []subgraph.Swap{largeSwap("0x1")}}
	cursors := newFakeCursorStore()
	cursors.blocks["uniswap-v3/ethereum"] = "100"
	r := newTestRunner(t, source, cursors, &fakeTableProvider{err: errors.New("binance down")})

	require.Error(t, r.RunBatch(context.Background()))
	assert.Equal(t, "100", cursors.blocks["uniswap-v3/ethereum"])
}

func TestRunBatchSinkFailureStillAdvancesCursor(t *testing.T) {
	source := &fakeLegSource{latest: "200", swaps: []subgraph.Swap{largeSwap("0x1")}}
	cursors := newFakeCursorStore()
	cursors.blocks["uniswap-v3/ethereum"] = "100"
	sink := &captureSink{err: errors.New("telegram down")}
	r := newTestRunner(t, source, cursors, &fakeTableProvider{table: usdTable(t)}, sink)

	require.NoError(t, r.RunBatch(context.Background()), "delivery is best effort")
	assert.Equal(t, "200", cursors.blocks["uniswap-v3/ethereum"])
}

func TestRunBatchBelowThresholdNoAlert(t *testing.T) {
	small := largeSwap("0x2")
	small.Amount0 = decimal.RequireFromString("100")
	source := &fakeLegSource{latest: "200", swaps: []subgraph.Swap{small}}
	cursors := newFakeCursorStore()
	cursors.blocks["uniswap-v3/ethereum"] = "100"
	sink := &captureSink{}
	r := newTestRunner(t, source, cursors, &fakeTableProvider{table: usdTable(t)}, sink)

	require.NoError(t, r.RunBatch(context.Background()))
	assert.Empty(t, sink.alerts)
	assert.Equal(t, "200", cursors.blocks["uniswap-v3/ethereum"])
}
