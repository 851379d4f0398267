package imagemeta

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/velo-events/site/internal/platform/timeouts"
)

// maxSidecarBytes bounds a sidecar body; placeholders are tiny data URIs.
const maxSidecarBytes = 1 << 20

var (
	ErrBasePathRequired = errors.New("metadata base path is required")
	ErrUnexpectedStatus = errors.New("unexpected metadata status")
)

// Fetcher retrieves the raw bytes of a sidecar.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// HTTPFetcher fetches sidecars over HTTP(S).
type HTTPFetcher struct {
	// Client defaults to a client with timeouts.MetadataFetch.
	Client *http.Client
}

// Fetch issues a GET for url. Non-2xx responses are errors.
func (f HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: timeouts.MetadataFetch}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build metadata request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch metadata: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSidecarBytes))
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	return body, nil
}
