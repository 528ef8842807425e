// Package cdn provides the HTTP JSON fetcher shared by every extraction pipeline.
package cdn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/sethvargo/go-retry"
)

// ErrNotFound is returned when the CDN answers 404. It is never retried.
var ErrNotFound = errors.New("cdn: not found")

// StatusError is a non-2xx, non-404 response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

// Cache stores raw response bodies keyed by URL. A miss is an empty string.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}

// Options configures a Client.
type Options struct {
	// Attempts is the total number of tries per document (minimum 1).
	Attempts int
	// BaseDelay is multiplied by the attempt number between tries.
	BaseDelay time.Duration
	// Timeout bounds a single request. Zero leaves it to the transport.
	Timeout   time.Duration
	Cache     Cache
	Logger    *slog.Logger
	Transport http.RoundTripper
}

// Client fetches JSON documents with linear-backoff retries.
type Client struct {
	httpClient *http.Client
	attempts   int
	baseDelay  time.Duration
	cache      Cache
	log        *slog.Logger
}

// New creates a CDN client. Connections are reused across requests.
func New(opts Options) *Client {
	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     90 * time.Second,
		}
	}

	attempts := opts.Attempts
	if attempts < 1 {
		attempts = 1
	}

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		attempts:  attempts,
		baseDelay: opts.BaseDelay,
		cache:     opts.Cache,
		log:       log,
	}
}

// GetJSON fetches url and decodes the body into v. A cached body that no
// longer decodes is evicted and fetched again.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	if cached, ok := c.cached(ctx, url); ok {
		if err := json.Unmarshal(cached, v); err == nil {
			return nil
		}
		c.log.Warn("evicting undecodable cache entry", "url", url)
		if err := c.cache.Delete(ctx, url); err != nil {
			c.log.Debug("cache delete failed", "url", url, "error", err)
		}
	}

	body, err := c.fetch(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", url, err)
	}
	return nil
}

func (c *Client) cached(ctx context.Context, url string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	cached, err := c.cache.Get(ctx, url)
	if err != nil {
		c.log.Debug("cache read failed", "url", url, "error", err)
		return nil, false
	}
	if cached == "" {
		return nil, false
	}
	c.log.Debug("cache hit", "url", url)
	return []byte(cached), true
}

// fetch downloads url and stores the body in the cache.
func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	body, err := c.fetchWithRetry(ctx, url)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, url, string(body)); err != nil {
			c.log.Debug("cache write failed", "url", url, "error", err)
		}
	}
	return body, nil
}

func (c *Client) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	attempt := 0

	err := retry.Do(ctx, retry.WithMaxRetries(uint64(c.attempts-1), c.linearBackoff()), func(ctx context.Context) error {
		attempt++
		b, err := c.doRequest(ctx, url)
		if err == nil {
			body = b
			return nil
		}
		if errors.Is(err, ErrNotFound) || ctx.Err() != nil {
			return err
		}
		if attempt < c.attempts {
			c.log.Debug("fetch failed, retrying", "url", url, "attempt", attempt, "error", err)
		}
		return retry.RetryableError(err)
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// linearBackoff waits BaseDelay, then 2*BaseDelay, and so on.
func (c *Client) linearBackoff() retry.Backoff {
	n := 0
	return retry.BackoffFunc(func() (time.Duration, bool) {
		n++
		return c.baseDelay * time.Duration(n), false
	})
}

// doRequest performs a single GET.
func (c *Client) doRequest(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return body, nil
}
