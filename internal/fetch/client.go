// Package fetch retrieves single HTML tables from the stat sites. It owns
// the polite-scraping policy (browser user agent, fixed minimum interval
// between requests) and the optional page cache at the fetch boundary.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fortuna/fastbreak/internal/table"
)

const (
	// UserAgent for requests; the stat sites reject default Go clients.
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// MinRequestInterval between requests to prevent rate limiting.
	MinRequestInterval = 2 * time.Second
)

// PageSource retrieves the raw HTML of one page.
type PageSource interface {
	Page(ctx context.Context, url string) (string, error)
}

// Cache stores fetched pages keyed by URL. Implementations must be safe
// for concurrent use.
type Cache interface {
	Get(ctx context.Context, url string) (string, bool)
	Set(ctx context.Context, url, html string)
}

// Client fetches and parses HTML tables with rate limiting.
type Client struct {
	source   PageSource
	cache    Cache
	interval time.Duration
	log      zerolog.Logger

	mu          sync.Mutex
	lastRequest time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithSource replaces the plain HTTP transport, e.g. with the rendered
// (headless browser) source for pages that need JS to materialize tables.
func WithSource(src PageSource) Option {
	return func(c *Client) { c.source = src }
}

// WithCache enables the page cache at the fetch boundary.
func WithCache(cache Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithInterval overrides the minimum interval between requests.
func WithInterval(d time.Duration) Option {
	return func(c *Client) { c.interval = d }
}

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a table fetcher with the default HTTP transport.
func NewClient(opts ...Option) *Client {
	c := &Client{
		source:   &httpSource{client: &http.Client{Timeout: 30 * time.Second}},
		interval: MinRequestInterval,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Page fetches one page, honoring the cache and the request interval.
func (c *Client) Page(ctx context.Context, url string) (string, error) {
	if c.cache != nil {
		if html, ok := c.cache.Get(ctx, url); ok {
			c.log.Debug().Str("url", url).Msg("page cache hit")
			return html, nil
		}
	}

	if err := c.waitInterval(ctx); err != nil {
		return "", err
	}

	html, err := c.source.Page(ctx, url)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}

	if c.cache != nil {
		c.cache.Set(ctx, url, html)
	}
	return html, nil
}

// Table fetches the page at url and parses the first element matching the
// CSS selector into a raw table. Network failure and missing element both
// surface as a *FetchError; there is no retry.
func (c *Client) Table(ctx context.Context, url, selector string) (*table.Table, error) {
	html, err := c.Page(ctx, url)
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			fe.Selector = selector
		}
		return nil, err
	}

	tbl, err := ParseTable(html, selector)
	if err != nil {
		return nil, &FetchError{URL: url, Selector: selector, Err: err}
	}

	c.log.Debug().Str("url", url).Str("selector", selector).
		Int("rows", tbl.Len()).Int("columns", len(tbl.Columns)).
		Msg("table fetched")
	return tbl, nil
}

// waitInterval enforces the polite-scraping pause between requests.
func (c *Client) waitInterval(ctx context.Context) error {
	c.mu.Lock()
	var wait time.Duration
	if !c.lastRequest.IsZero() {
		if elapsed := time.Since(c.lastRequest); elapsed < c.interval {
			wait = c.interval - elapsed
		}
	}
	c.lastRequest = time.Now().Add(wait)
	c.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

// httpSource is the default plain-HTTP page source.
type httpSource struct {
	client *http.Client
}

func (s *httpSource) Page(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
