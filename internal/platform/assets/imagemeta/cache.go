package imagemeta

import (
	"context"
	"sync"

	"github.com/velo-events/site/internal/platform/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"
)

var tracer = otel.Tracer("internal/platform/assets/imagemeta")

// Cache memoizes sidecars by base path for the life of the process. Entries
// never expire; the key space is bounded by the number of images.
//
// The zero value is usable but has no base URL, so its HTTPFetcher sees
// site-relative URLs and every lookup is cached as Empty. Use NewCache with
// an absolute base URL, or a Fetcher that understands site-relative URLs,
// for real fetches.
type Cache struct {
	fetcher Fetcher
	baseURL string

	mu      sync.RWMutex
	entries map[string]Metadata
	flight  singleflight.Group
}

// NewCache returns a cache that resolves sidecars against baseURL, e.g.
// "https://velo.events". A nil fetcher defaults to HTTPFetcher, which needs
// an absolute baseURL.
func NewCache(fetcher Fetcher, baseURL string) *Cache {
	if fetcher == nil {
		fetcher = HTTPFetcher{}
	}
	return &Cache{
		fetcher: fetcher,
		baseURL: baseURL,
		entries: make(map[string]Metadata),
	}
}

// Get returns the metadata for basePath, fetching it on first use.
//
// Failures (bad base path, transport error, non-2xx, malformed JSON) are
// cached as Empty. Concurrent calls for an uncached key share one fetch.
func (c *Cache) Get(ctx context.Context, basePath string) Metadata {
	if md, ok := c.cached(basePath); ok {
		return md
	}
	v, _, _ := c.flight.Do(basePath, func() (any, error) {
		if md, ok := c.cached(basePath); ok {
			return md, nil
		}
		md := c.fetch(ctx, basePath)
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.entries == nil {
			c.entries = make(map[string]Metadata)
		}
		if existing, ok := c.entries[basePath]; ok {
			return existing, nil
		}
		c.entries[basePath] = md
		return md, nil
	})
	return v.(Metadata)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) cached(basePath string) (Metadata, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	md, ok := c.entries[basePath]
	return md, ok
}

func (c *Cache) fetch(ctx context.Context, basePath string) Metadata {
	ctx, span := tracer.Start(ctx, "imagemeta.fetch")
	defer span.End()
	span.SetAttributes(attribute.String("image.base_path", basePath))

	fail := func(err error) Metadata {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Empty
	}
	target, err := SidecarURL(c.baseURL, basePath)
	if err != nil {
		return fail(err)
	}
	fetcher := c.fetcher
	if fetcher == nil {
		fetcher = HTTPFetcher{}
	}
	data, err := fetcher.Fetch(ctx, target)
	if err != nil {
		return fail(err)
	}
	md, err := decode(data)
	if err != nil {
		return fail(err)
	}
	return md
}
