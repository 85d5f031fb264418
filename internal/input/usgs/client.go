package usgs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"quakeview/internal/logger"
	"quakeview/pkg/models"
)

// DefaultURL is the USGS FDSN event query endpoint.
const DefaultURL = "https://earthquake.usgs.gov/fdsnws/event/1/query"

const maxBodyBytes = 32 << 20

// Config configures the feed client.
type Config struct {
	URL     string
	Limit   int
	Timeout time.Duration
	Headers map[string]string
}

// Client fetches the most recent events from the feed.
type Client struct {
	endpoint string
	headers  map[string]string
	client   *http.Client
}

// NewClient creates a feed client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 100
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	endpoint, err := BuildURL(cfg.URL, cfg.Limit)
	if err != nil {
		return nil, err
	}
	return &Client{
		endpoint: endpoint,
		headers:  cfg.Headers,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// BuildURL adds the GeoJSON format, limit and time ordering to base.
func BuildURL(base string, limit int) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse feed url: %w", err)
	}
	q := u.Query()
	q.Set("format", "geojson")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("orderby", "time")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Endpoint returns the fully built request URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Fetch issues one GET and decodes the feed. There is no retry.
func (c *Client) Fetch(ctx context.Context) (*models.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, &FetchError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/geo+json, application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	feed, err := Decode(body)
	if err != nil {
		return nil, err
	}
	logger.Debugf("Fetched %d events from %s", len(feed.Events), c.endpoint)
	return feed, nil
}
