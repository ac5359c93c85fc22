package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
environment: development
tracker:
  name: test-tracker
projects:
  uniswap-v3:
    chains:
      ethereum:
        subgraph_url: https://example.com/subgraph
pricing:
  binance_url: https://api.binance.com/api/v3/ticker/price
kvstore:
  type: badger
  badger:
    directory: /tmp/badger
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, DefaultPollInterval, cfg.Tracker.PollInterval)
	assert.Equal(t, DefaultCursorTTL, cfg.Tracker.CursorTTL)
	assert.Equal(t, DefaultConfirmationLag, cfg.Tracker.ConfirmationLag)
	assert.Equal(t, DefaultMainstreamThreshold, cfg.Alerting.MainstreamThreshold)
	assert.Equal(t, DefaultAltThreshold, cfg.Alerting.AltThreshold)
	assert.Equal(t, []string{"en", "zh"}, cfg.Alerting.Locales)

	chain := cfg.Projects["uniswap-v3"].Chains["ethereum"]
	assert.Equal(t, DefaultPageSize, chain.PageSize)
	assert.Equal(t, cfg.Tracker.PollInterval, chain.PollInterval)
}

func TestLoadMergesChainDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
environment: production
tracker:
  name: test-tracker
chain_defaults:
  poll_interval: 30s
  page_size: 500
projects:
  uniswap-v3:
    chains:
      ethereum:
        subgraph_url: https://example.com/eth
      polygon:
        subgraph_url: https://example.com/polygon
        poll_interval: 10s
pricing:
  binance_url: https://api.binance.com/api/v3/ticker/price
kvstore:
  type: badger
  badger:
    directory: /tmp/badger
`))
	require.NoError(t, err)

	eth := cfg.Projects["uniswap-v3"].Chains["ethereum"]
	assert.Equal(t, 30*time.Second, eth.PollInterval)
	assert.Equal(t, 500, eth.PageSize)

	polygon := cfg.Projects["uniswap-v3"].Chains["polygon"]
	assert.Equal(t, 10*time.Second, polygon.PollInterval, "chain value wins over defaults")
	assert.Equal(t, 500, polygon.PageSize)
}

func TestLoadRejectsInvalidEnvironment(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: staging
tracker:
  name: test-tracker
projects:
  uniswap-v3:
    chains:
      ethereum:
        subgraph_url: https://example.com/subgraph
pricing:
  binance_url: https://api.binance.com/api/v3/ticker/price
kvstore:
  type: badger
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}

func TestLoadRejectsMissingSubgraphURL(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: development
tracker:
  name: test-tracker
projects:
  uniswap-v3:
    chains:
      ethereum:
        page_size: 100
pricing:
  binance_url: https://api.binance.com/api/v3/ticker/price
kvstore:
  type: badger
`))
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
