package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Tag is optional display enrichment for a sender address.
type Tag struct {
	DisplayTag string `json:"display_tag"`
	Twitter    string `json:"twitter"`
}

// TagLookup resolves an address to its known tag. A zero Tag with nil error
// means the address is simply unlabeled.
type TagLookup interface {
	Get(ctx context.Context, address string) (Tag, error)
}

// StaticTagLookup serves tags from a fixed in-memory map, used for
// config-seeded labels and in tests.
type StaticTagLookup map[string]Tag

func (s StaticTagLookup) Get(_ context.Context, address string) (Tag, error) {
	return s[address], nil
}

// HTTPTagLookup queries an address-label service over HTTP.
type HTTPTagLookup struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPTagLookup(baseURL string) *HTTPTagLookup {
	return &HTTPTagLookup{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (h *HTTPTagLookup) Get(ctx context.Context, address string) (Tag, error) {
	u := fmt.Sprintf("%s?address=%s", h.baseURL, url.QueryEscape(address))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Tag{}, fmt.Errorf("taglookup: create request: %w", err)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return Tag{}, fmt.Errorf("taglookup: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Tag{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Tag{}, fmt.Errorf("taglookup: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var tag Tag
	if err := json.NewDecoder(resp.Body).Decode(&tag); err != nil {
		return Tag{}, fmt.Errorf("taglookup: decode response: %w", err)
	}
	return tag, nil
}
