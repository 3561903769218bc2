// Package fetch provides the document URL fetcher.
// Implements ports.DocumentFetcher over plain HTTP.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxDocumentBytes caps downloads at 32 MiB.
const maxDocumentBytes = 32 << 20

// HTTPFetcher downloads documents by URL.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher with an explicit timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads the URL, returning body bytes and the declared content type.
// Network errors and non-2xx statuses fail; the resolver wraps them as
// document-fetch failures.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, "", fmt.Errorf("reading body: %w", err)
	}

	return data, resp.Header.Get("Content-Type"), nil
}
