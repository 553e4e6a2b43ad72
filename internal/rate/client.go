// AngelaMos | 2026
// client.go

package rate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/carterperez-dev/currency-tracker/internal/config"
	"github.com/carterperez-dev/currency-tracker/internal/core"
)

const (
	feedCacheKey = "feed"
	maxFeedBytes = 4 << 20
)

type Client struct {
	url     string
	http    *http.Client
	cache   Cache
	ttl     time.Duration
	retries uint64
	backoff time.Duration
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithCache(cache Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

func WithRetries(retries uint64, backoff time.Duration) Option {
	return func(c *Client) {
		c.retries = retries
		c.backoff = backoff
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func NewClient(cfg config.ProviderConfig, opts ...Option) *Client {
	c := &Client{
		url: cfg.URL,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		ttl:     cfg.CacheTTL,
		retries: 2,
		backoff: 250 * time.Millisecond,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger = c.logger.With(slog.String("component", "rate_client"))

	return c
}

// Fetch returns the provider feed, served from the cache while it is fresh.
func (c *Client) Fetch(ctx context.Context) (*Feed, error) {
	if c.cache != nil {
		raw, err := c.cache.Get(ctx, feedCacheKey)
		switch {
		case err == nil:
			feed, parseErr := ParseFeed(raw)
			if parseErr == nil {
				return feed, nil
			}
			c.logger.WarnContext(ctx, "discarding cached feed", "error", parseErr)
		case !errors.Is(err, ErrCacheMiss):
			c.logger.WarnContext(ctx, "feed cache unavailable", "error", err)
		}
	}

	return c.Refresh(ctx)
}

// Refresh bypasses the cache, downloads the feed and replaces the cached copy.
func (c *Client) Refresh(ctx context.Context) (*Feed, error) {
	ctx, span := core.StartSpan(ctx, "rate.fetch", core.AttrProvider.String(c.url))
	defer span.End()

	body, err := c.download(ctx)
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	feed, err := ParseFeed(body)
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	span.SetAttributes(core.AttrQuotes.Int(feed.Len()))

	if c.cache != nil && c.ttl > 0 {
		if err := c.cache.Set(ctx, feedCacheKey, body, c.ttl); err != nil {
			c.logger.WarnContext(ctx, "failed to cache feed", "error", err)
		}
	}

	return feed, nil
}

// Details returns the provider's full record for one currency.
func (c *Client) Details(ctx context.Context, code string) (*Details, error) {
	feed, err := c.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	q, err := feed.Quote(code)
	if err != nil {
		return nil, err
	}

	return &Details{
		Quote:     q,
		Timestamp: feed.Timestamp,
	}, nil
}

// Rate returns the normalized live rate for code.
func (c *Client) Rate(ctx context.Context, code string) (float64, error) {
	if strings.EqualFold(code, PivotCode) {
		return 1, nil
	}

	feed, err := c.Fetch(ctx)
	if err != nil {
		return 0, err
	}
	return feed.Rate(code)
}

type Details struct {
	Quote
	Timestamp string `json:"timestamp"`
}

// Listing is every usable quote in the current feed, ordered by char code.
// Entries that fail validation or normalization are named in Skipped.
type Listing struct {
	Timestamp string   `json:"timestamp"`
	Quotes    []Quote  `json:"quotes"`
	Skipped   []string `json:"skipped,omitempty"`
}

func (c *Client) Quotes(ctx context.Context) (*Listing, error) {
	feed, err := c.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	codes := feed.Codes()
	listing := &Listing{
		Timestamp: feed.Timestamp,
		Quotes:    make([]Quote, 0, len(codes)),
	}
	for _, code := range codes {
		q, err := feed.Quote(code)
		if err == nil {
			_, err = q.Rate()
		}
		if err != nil {
			listing.Skipped = append(listing.Skipped, code)
			continue
		}
		listing.Quotes = append(listing.Quotes, q)
	}

	return listing, nil
}

func (c *Client) download(ctx context.Context) ([]byte, error) {
	var body []byte

	backoff := retry.WithMaxRetries(c.retries, retry.NewExponential(c.backoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		b, err := c.get(ctx)
		if err != nil {
			var se *statusError
			if errors.As(err, &se) && !se.retryable() {
				return err
			}
			return retry.RetryableError(err)
		}
		body = b
		return nil
	})
	if err != nil {
		if errors.Is(err, core.ErrTransport) {
			return nil, err
		}
		return nil, fmt.Errorf("fetch %s: %w: %w", c.url, core.ErrTransport, err)
	}

	return body, nil
}

func (c *Client) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build provider request: %w: %w", core.ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w: %w", c.url, core.ErrTransport, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // drain for reuse
		return nil, &statusError{url: c.url, code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read provider response: %w: %w", core.ErrTransport, err)
	}

	return body, nil
}

type statusError struct {
	url  string
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.url, e.code)
}

func (e *statusError) Unwrap() error {
	return core.ErrTransport
}

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= http.StatusInternalServerError
}
