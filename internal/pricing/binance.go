package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const requestTimeout = 30 * time.Second

// BinanceSource fetches spot prices from the Binance ticker endpoint.
// Only *USDT pairs are kept; the USDT suffix is stripped so the table is
// keyed by base symbol.
type BinanceSource struct {
	url        string
	httpClient *http.Client
}

func NewBinanceSource(url string) *BinanceSource {
	return &BinanceSource{
		url:        url,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

type tickerEntry struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// Fetch returns base prices keyed by symbol.
func (b *BinanceSource) Fetch(ctx context.Context) (map[string]decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.url, nil)
	if err != nil {
		return nil, fmt.Errorf("binance: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("binance: fetch tickers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("binance: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var tickers []tickerEntry
	if err := json.NewDecoder(resp.Body).Decode(&tickers); err != nil {
		return nil, fmt.Errorf("binance: decode tickers: %w", err)
	}

	return parseTickers(tickers), nil
}

// parseTickers keeps USDT-quoted pairs and strips the quote suffix.
// Unparseable prices are skipped.
func parseTickers(tickers []tickerEntry) map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal, len(tickers))
	for _, t := range tickers {
		base, ok := strings.CutSuffix(t.Symbol, "USDT")
		if !ok || base == "" {
			continue
		}
		price, err := decimal.NewFromString(t.Price)
		if err != nil {
			continue
		}
		prices[base] = price
	}
	return prices
}
