// Package prices fetches crypto quotes and keeps the latest board for display.
package prices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"

	"fintrack/internal/version"
)

// ErrNoPrice is returned when a response carries no usable price for an asset
var ErrNoPrice = errors.New("no price in quote response")

// ErrResponseTooLarge is returned when a quote response exceeds maxQuoteBytes
var ErrResponseTooLarge = errors.New("quote response too large")

// maxQuoteBytes bounds a quote response body
const maxQuoteBytes = 1 << 20

// Asset is a tracked quote and the JSONPath locating its price in the response
type Asset struct {
	ID   string
	Name string
	Path string
}

// DefaultAssets are the two quotes shown on the dashboard, priced in BRL
var DefaultAssets = []Asset{
	{ID: "bitcoin", Name: "Bitcoin", Path: "$.bitcoin.brl"},
	{ID: "solana", Name: "Solana", Path: "$.solana.brl"},
}

// Client reads quotes from a JSON price endpoint
type Client struct {
	http   *http.Client
	url    string
	assets []Asset
}

// NewClient creates a client for url. Each request is bounded by timeout.
func NewClient(url string, timeout time.Duration, assets []Asset) *Client {
	return &Client{
		http:   &http.Client{Timeout: timeout},
		url:    url,
		assets: assets,
	}
}

// Assets returns the tracked assets
func (c *Client) Assets() []Asset {
	return c.assets
}

// Fetch retrieves the current price of every asset. Any missing price fails the whole fetch.
func (c *Client) Fetch(ctx context.Context) (map[string]decimal.Decimal, error) {
	var jobj any
	if err := c.get(ctx, &jobj); err != nil {
		return nil, err
	}

	out := make(map[string]decimal.Decimal, len(c.assets))
	for _, a := range c.assets {
		price, err := extract(jobj, a.Path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a.ID, err)
		}
		out[a.ID] = price
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxQuoteBytes+1))
	if err != nil {
		return err
	}
	if len(body) > maxQuoteBytes {
		return ErrResponseTooLarge
	}
	return json.Unmarshal(body, data)
}

func extract(jobj any, path string) (decimal.Decimal, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", ErrNoPrice, path, err)
	}
	// a path may yield a list holding the single answer
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}

	val, ok := jval.(float64)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s is not a number: %v", ErrNoPrice, path, jval)
	}
	return decimal.NewFromFloat(val), nil
}
