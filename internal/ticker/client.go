// Package ticker resolves CUSIPs to trading symbols through a permanently
// cached remote mapping lookup.
package ticker

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// ErrRateLimited is returned by a mapping lookup when the remote service
// answered 429. The resolver treats it like any other failed lookup; it is
// surfaced as a distinct sentinel so callers can log it meaningfully.
var ErrRateLimited = eris.New("ticker: rate limited")

// MappingClient looks up the trading symbol for a CUSIP. An empty symbol
// with a nil error means the service answered but knows no mapping.
type MappingClient interface {
	Lookup(ctx context.Context, cusip string) (string, error)
}

// APIClient implements MappingClient against the sec-api.io CUSIP mapping
// endpoint.
type APIClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewAPIClient creates a mapping client for the given base URL and API key.
func NewAPIClient(baseURL, apiKey string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// mappingEntry is one element of the endpoint's JSON array response.
type mappingEntry struct {
	Ticker string `json:"ticker"`
}

// Lookup queries the mapping endpoint. The response is a JSON array of
// candidate instruments; the first entry with a ticker wins.
func (c *APIClient) Lookup(ctx context.Context, cusip string) (string, error) {
	url := fmt.Sprintf("%s/mapping/cusip/%s?token=%s", c.baseURL, cusip, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", eris.Wrap(err, "ticker: create request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", eris.Wrapf(err, "ticker: lookup %s", cusip)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", eris.Wrapf(ErrRateLimited, "lookup %s", cusip)
	}
	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("ticker: lookup %s: status %d", cusip, resp.StatusCode)
	}

	var entries []mappingEntry
	if err := decodeJSON(resp.Body, &entries); err != nil {
		return "", eris.Wrapf(err, "ticker: decode lookup %s", cusip)
	}

	for _, e := range entries {
		if e.Ticker != "" {
			return e.Ticker, nil
		}
	}
	return "", nil
}
