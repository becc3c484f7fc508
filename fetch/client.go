package fetch

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// UserAgent identifies this tool to the register servers.
const UserAgent = "ematools/1.0 (EC Union Register parser)"

// StatusError reports a non-200 response. Callers walking the paginated
// register use it to detect the end of the list.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error %d for %s", e.StatusCode, e.URL)
}

// Options configures a Client.
type Options struct {
	// CacheDir is the directory for cached response bodies.
	CacheDir string
	// Timeout per request. Zero means 30 seconds.
	Timeout time.Duration
	// Retries is the number of retry attempts for failed requests. Zero
	// means 3.
	Retries int
	// LogPath is the request log database path. Empty disables logging.
	LogPath string
}

// Client fetches register pages with on-disk caching. Cache hits never
// touch the network; misses are fetched with retries and written through.
type Client struct {
	http  *resty.Client
	cache *Cache
	log   *RequestLog
}

// NewClient creates a caching fetch client.
func NewClient(opts Options) (*Client, error) {
	cache, err := NewCache(opts.CacheDir)
	if err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	retries := opts.Retries
	if retries == 0 {
		retries = 3
	}

	var reqLog *RequestLog
	if opts.LogPath != "" {
		reqLog, err = NewRequestLog(opts.LogPath)
		if err != nil {
			return nil, err
		}
	}

	http := resty.New().
		SetTimeout(timeout).
		SetRetryCount(retries-1).
		SetRetryWaitTime(1*time.Second).
		SetHeader("User-Agent", UserAgent)

	return &Client{
		http:  http,
		cache: cache,
		log:   reqLog,
	}, nil
}

// Close releases the request log database, if any.
func (c *Client) Close() error {
	if c.log != nil {
		return c.log.Close()
	}
	return nil
}

// Get returns the body for a URL, serving from the cache when possible.
// force bypasses the cache and refreshes the entry. A non-200 response is
// reported as a StatusError and is not cached.
func (c *Client) Get(ctx context.Context, url string, force bool) ([]byte, error) {
	if !force {
		body, ok, err := c.cache.Get(url)
		if err != nil {
			return nil, err
		}
		if ok {
			slog.Debug("cache hit", "url", url)
			return body, nil
		}
	}

	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	if resp.StatusCode() != 200 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode()}
	}

	body := resp.Body()
	if err := c.cache.Put(url, body); err != nil {
		return nil, err
	}

	if c.log != nil {
		if err := c.log.Record(url, c.cache.Key(url), resp.StatusCode()); err != nil {
			slog.Warn("failed to record request", "url", url, "err", err)
		}
	}

	return body, nil
}

// GetDocument fetches a URL and parses the body as HTML.
func (c *Client) GetDocument(ctx context.Context, url string, force bool) (*goquery.Document, error) {
	body, err := c.Get(ctx, url, force)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", url, err)
	}
	return doc, nil
}

// GetPDF fetches a PDF document, using the same cache as page fetches.
func (c *Client) GetPDF(ctx context.Context, url string, force bool) ([]byte, error) {
	return c.Get(ctx, url, force)
}

// Log returns the request log, or nil when logging is disabled.
func (c *Client) Log() *RequestLog {
	return c.log
}
