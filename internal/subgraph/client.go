// Package subgraph queries hosted GraphQL subgraphs for DEX swap events.
package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dexwatch/swap-tracker/pkg/common/logger"
	"github.com/shopspring/decimal"
)

const requestTimeout = 30 * time.Second

// ErrNoRecentBlock is returned by LatestBlock when the subgraph has no
// confirmed swap activity since the given timestamp.
var ErrNoRecentBlock = errors.New("no confirmed block since timestamp")

// Swap is one raw pool-level swap row as the subgraph reports it.
type Swap struct {
	TxID        string
	LogIndex    int64
	Symbol0     string
	Amount0     decimal.Decimal
	Symbol1     string
	Amount1     decimal.Decimal
	Origin      string
	BlockNumber string
}

// Client is a GraphQL client for one subgraph endpoint.
type Client struct {
	graphqlURL string
	httpClient *http.Client
}

func NewClient(graphqlURL string) *Client {
	return &Client{
		graphqlURL: graphqlURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// graphqlRequest is the standard GraphQL request envelope.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphqlResponse is the standard GraphQL response envelope.
type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// LatestBlock returns the block number of the earliest swap confirmed after
// the given timestamp. Callers pass a lagged timestamp (now minus the
// confirmation window) so the returned block is already final.
func (c *Client) LatestBlock(ctx context.Context, since time.Time) (string, error) {
	query := `
		query LatestBlock($since: BigInt!) {
			swaps(
				orderBy: transaction__blockNumber
				orderDirection: asc
				first: 1
				where: { timestamp_gt: $since }
			) {
				transaction {
					blockNumber
				}
			}
		}
	`

	respData, err := c.doQuery(ctx, query, map[string]any{
		"since": strconv.FormatInt(since.Unix(), 10),
	})
	if err != nil {
		return "", fmt.Errorf("subgraph: fetch latest block: %w", err)
	}

	var result struct {
		Swaps []struct {
			Transaction struct {
				BlockNumber string `json:"blockNumber"`
			} `json:"transaction"`
		} `json:"swaps"`
	}
	if err := json.Unmarshal(respData, &result); err != nil {
		return "", fmt.Errorf("subgraph: decode latest block: %w", err)
	}
	if len(result.Swaps) == 0 {
		return "", ErrNoRecentBlock
	}
	return result.Swaps[0].Transaction.BlockNumber, nil
}

// Swaps returns every swap with fromBlock < blockNumber <= toBlock, ordered
// by logIndex ascending. The subgraph caps a page at pageSize rows, so the
// client keeps re-requesting with an increasing skip until a short page.
func (c *Client) Swaps(ctx context.Context, fromBlock, toBlock string, pageSize int) ([]Swap, error) {
	query := `
		query Swaps($from: BigInt!, $to: BigInt!, $first: Int!, $skip: Int!) {
			swaps(
				where: {
					transaction_: {
						blockNumber_gt: $from,
						blockNumber_lte: $to
					}
				}
				first: $first
				skip: $skip
				orderBy: logIndex
				orderDirection: asc
			) {
				logIndex
				token0 {
					symbol
				}
				token1 {
					symbol
				}
				amount0
				amount1
				transaction {
					id
					blockNumber
				}
				origin
			}
		}
	`

	var all []Swap
	for skip := 0; ; skip += pageSize {
		respData, err := c.doQuery(ctx, query, map[string]any{
			"from":  fromBlock,
			"to":    toBlock,
			"first": pageSize,
			"skip":  skip,
		})
		if err != nil {
			return nil, fmt.Errorf("subgraph: fetch swaps: %w", err)
		}

		page, err := decodeSwapsPage(respData)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)

		if len(page) < pageSize {
			return all, nil
		}
	}
}

func decodeSwapsPage(data json.RawMessage) ([]Swap, error) {
	var result struct {
		Swaps []struct {
			LogIndex json.Number `json:"logIndex"`
			Token0   struct {
				Symbol string `json:"symbol"`
			} `json:"token0"`
			Token1 struct {
				Symbol string `json:"symbol"`
			} `json:"token1"`
			Amount0     string `json:"amount0"`
			Amount1     string `json:"amount1"`
			Transaction struct {
				ID          string `json:"id"`
				BlockNumber string `json:"blockNumber"`
			} `json:"transaction"`
			Origin string `json:"origin"`
		} `json:"swaps"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("subgraph: decode swaps: %w", err)
	}

	swaps := make([]Swap, 0, len(result.Swaps))
	for _, row := range result.Swaps {
		amount0, err := decimal.NewFromString(row.Amount0)
		if err != nil {
			logger.Warn("Skipping malformed swap row",
				"tx_id", row.Transaction.ID, "field", "amount0", "value", row.Amount0)
			continue
		}
		amount1, err := decimal.NewFromString(row.Amount1)
		if err != nil {
			logger.Warn("Skipping malformed swap row",
				"tx_id", row.Transaction.ID, "field", "amount1", "value", row.Amount1)
			continue
		}
		logIndex, _ := row.LogIndex.Int64()

		swaps = append(swaps, Swap{
			TxID:        row.Transaction.ID,
			LogIndex:    logIndex,
			Symbol0:     row.Token0.Symbol,
			Amount0:     amount0,
			Symbol1:     row.Token1.Symbol,
			Amount1:     amount1,
			Origin:      row.Origin,
			BlockNumber: row.Transaction.BlockNumber,
		})
	}
	return swaps, nil
}

func (c *Client) doQuery(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var envelope graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %s", envelope.Errors[0].Message)
	}
	return envelope.Data, nil
}
