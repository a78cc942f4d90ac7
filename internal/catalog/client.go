package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vmunix/embywatch/internal/media"
)

const (
	defaultPageSize = 500

	// defaultFields is the field selection requested from the server.
	// Everything the normalizer consumes must be listed here or the
	// server omits it from the response.
	defaultFields = "Path,DateCreated,ProductionYear,MediaSources"
)

// ErrUnauthorized is returned when the server rejects the API key.
var ErrUnauthorized = errors.New("catalog: invalid or expired API key")

// Client queries an Emby/Jellyfin-compatible server.
type Client struct {
	baseURL    string
	apiKey     string
	pageSize   int
	httpClient *http.Client
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithPageSize sets the page size for the /Items query loop.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// NewClient creates a catalog client for the given server URL.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		pageSize: defaultPageSize,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves all movie and episode items from the server and
// normalizes them. Any network or HTTP failure is returned as an error
// so callers never act on a half-fetched catalog.
func (c *Client) Fetch(ctx context.Context) ([]media.Item, error) {
	var items []media.Item

	start := 0
	for {
		page, total, err := c.fetchPage(ctx, start)
		if err != nil {
			return nil, err
		}

		fetchedAt := c.now()
		for _, raw := range page {
			items = append(items, normalizeItem(raw, fetchedAt))
		}

		start += len(page)
		if start >= total || len(page) == 0 {
			break
		}
	}

	return items, nil
}

func (c *Client) fetchPage(ctx context.Context, startIndex int) ([]rawItem, int, error) {
	q := url.Values{}
	q.Set("Recursive", "true")
	q.Set("IncludeItemTypes", "Movie,Episode")
	q.Set("Fields", defaultFields)
	q.Set("StartIndex", strconv.Itoa(startIndex))
	q.Set("Limit", strconv.Itoa(c.pageSize))

	reqURL := c.baseURL + "/emby/Items?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Emby-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("query catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, 0, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("catalog API error: %s", resp.Status)
	}

	var body itemsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, 0, fmt.Errorf("decode response: %w", err)
	}

	return body.Items, body.TotalRecordCount, nil
}

// PrimaryImageURL returns the server's primary cover image URL for an
// item. Used as the poster fallback when metadata providers have none.
func (c *Client) PrimaryImageURL(itemID string) string {
	return c.baseURL + "/emby/Items/" + url.PathEscape(itemID) + "/Images/Primary?api_key=" + url.QueryEscape(c.apiKey)
}
