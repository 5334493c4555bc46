// Package fetcher downloads and decodes data from the SEC EDGAR HTTP
// endpoints, with mandatory User-Agent identification and fixed per-host
// request pacing.
package fetcher

import (
	"context"
	"io"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}
