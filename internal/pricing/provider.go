package pricing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Source yields base prices for table construction.
type Source interface {
	Fetch(ctx context.Context) (map[string]decimal.Decimal, error)
}

// Provider hands out the current price table, refreshing it from the source
// when the cached one is older than the refresh interval. Tables themselves
// are immutable; only the pointer under the mutex changes.
type Provider struct {
	source    Source
	aliases   map[string]string
	overrides map[string]decimal.Decimal
	refresh   time.Duration

	mu        sync.Mutex
	table     *Table
	fetchedAt time.Time
}

func NewProvider(source Source, aliases map[string]string, overrides map[string]decimal.Decimal, refresh time.Duration) *Provider {
	return &Provider{
		source:    source,
		aliases:   aliases,
		overrides: overrides,
		refresh:   refresh,
	}
}

// Table returns a fresh-enough table, fetching from the source if needed.
// On refresh failure a previously cached table is NOT reused: callers must
// abandon the batch rather than price against stale data.
func (p *Provider) Table(ctx context.Context) (*Table, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.table != nil && time.Since(p.fetchedAt) < p.refresh {
		return p.table, nil
	}

	base, err := p.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh price table: %w", err)
	}

	p.table = NewTable(base, p.aliases, p.overrides)
	p.fetchedAt = time.Now()
	return p.table, nil
}
