package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// ItemPlaceholder is replaced by the escaped item id in URLTemplate.
	ItemPlaceholder = "{item}"

	maxBodyBytes   = 8 << 20
	defaultTimeout = 15 * time.Second
)

// Config describes how to reach the product feed.
type Config struct {
	URLTemplate string
	Timeout     time.Duration
	UserAgent   string
	Headers     map[string]string
}

// Client fetches product pages from the feed.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a feed client. A nil httpClient gets one with cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger}
}

// URL returns the endpoint for an item.
func (c *Client) URL(itemID string) string {
	return strings.ReplaceAll(c.cfg.URLTemplate, ItemPlaceholder, url.PathEscape(itemID))
}

// Fetch retrieves and normalizes one product.
func (c *Client) Fetch(ctx context.Context, itemID string) (*Product, error) {
	if strings.TrimSpace(itemID) == "" {
		return nil, ErrInvalidInput
	}

	endpoint := c.URL(itemID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("feed response", "prod_id", itemID, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("%w: %s returned %d: %s", ErrFetch, endpoint, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var payload productPayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode body: %w", ErrFetch, err)
	}

	return normalize(itemID, payload)
}
