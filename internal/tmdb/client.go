package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://api.themoviedb.org"
const defaultCacheTTL = 24 * time.Hour

// ErrNotFound is returned when a search yields no results or a detail
// lookup misses.
var ErrNotFound = errors.New("title not found")

// MediaType selects the TMDB endpoint family.
type MediaType string

const (
	TypeMovie MediaType = "movie"
	TypeTV    MediaType = "tv"
)

// Client is a TMDB API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      *cache
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithCacheTTL sets the cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = newCache(ttl)
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new TMDB client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache: newCache(defaultCacheTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search queries TMDB for titles of the given type. The year narrows
// movie searches when non-zero. Returns results in TMDB's ranking
// order; an empty result set is ErrNotFound.
func (c *Client) Search(ctx context.Context, mediaType MediaType, query string, year int) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", query)
	if year > 0 && mediaType == TypeMovie {
		params.Set("year", strconv.Itoa(year))
	}
	reqURL := fmt.Sprintf("%s/3/search/%s?%s", c.baseURL, mediaType, params.Encode())

	var body searchResponse
	if err := c.getJSON(ctx, reqURL, &body); err != nil {
		return nil, err
	}
	if len(body.Results) == 0 {
		return nil, ErrNotFound
	}
	return body.Results, nil
}

// Details fetches localized metadata for a title by TMDB ID.
func (c *Client) Details(ctx context.Context, mediaType MediaType, tmdbID int64, language string) (*Details, error) {
	cacheKey := fmt.Sprintf("%s/%d/%s", mediaType, tmdbID, language)
	if details, ok := c.cache.get(cacheKey); ok {
		return details, nil
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	if language != "" {
		params.Set("language", language)
	}
	reqURL := fmt.Sprintf("%s/3/%s/%d?%s", c.baseURL, mediaType, tmdbID, params.Encode())

	var details Details
	if err := c.getJSON(ctx, reqURL, &details); err != nil {
		return nil, err
	}

	c.cache.set(cacheKey, &details)
	return &details, nil
}

func (c *Client) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("TMDB API error: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
