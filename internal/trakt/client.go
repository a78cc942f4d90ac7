// Package trakt provides a minimal Trakt API client for rating lookups.
package trakt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://api.trakt.tv"

// Sentinel errors for Trakt API responses.
var (
	ErrNotFound     = errors.New("title not found on trakt")
	ErrUnauthorized = errors.New("unauthorized: invalid trakt API key")
)

// MediaType selects the Trakt endpoint family.
type MediaType string

const (
	TypeMovie MediaType = "movie"
	TypeShow  MediaType = "show"
)

// Client is a Trakt API v2 client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a new Trakt client.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchEntry struct {
	Movie *titleRecord `json:"movie"`
	Show  *titleRecord `json:"show"`
}

type titleRecord struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
	IDs   struct {
		Slug string `json:"slug"`
	} `json:"ids"`
}

func (e *searchEntry) record() *titleRecord {
	if e.Movie != nil {
		return e.Movie
	}
	return e.Show
}

// LookupTMDB resolves a TMDB ID to the Trakt slug. Falls back to a
// text search by title and year when the ID lookup is empty.
func (c *Client) LookupTMDB(ctx context.Context, mediaType MediaType, tmdbID int64, title string, year int) (string, error) {
	reqURL := fmt.Sprintf("%s/search/tmdb/%d?type=%s", c.baseURL, tmdbID, mediaType)
	entries, err := c.search(ctx, reqURL)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", err
	}

	if len(entries) == 0 {
		params := url.Values{}
		params.Set("query", title)
		if year > 0 {
			params.Set("years", strconv.Itoa(year))
		}
		reqURL = fmt.Sprintf("%s/search/%s?%s", c.baseURL, mediaType, params.Encode())
		entries, err = c.search(ctx, reqURL)
		if err != nil {
			return "", err
		}
	}

	for _, entry := range entries {
		if rec := entry.record(); rec != nil && rec.IDs.Slug != "" {
			return rec.IDs.Slug, nil
		}
	}
	return "", ErrNotFound
}

// Rating is a Trakt community rating.
type Rating struct {
	Score float64 // 0-10, one decimal
	Votes int
	URL   string // trakt.tv page for the title
}

type ratingsResponse struct {
	Rating float64 `json:"rating"`
	Votes  int     `json:"votes"`
}

// GetRating fetches the community rating for a slug. Trakt reports a
// 0-10 rating which is rounded to one decimal.
func (c *Client) GetRating(ctx context.Context, mediaType MediaType, slug string) (*Rating, error) {
	reqURL := fmt.Sprintf("%s/%ss/%s/ratings", c.baseURL, mediaType, url.PathEscape(slug))

	var body ratingsResponse
	if err := c.getJSON(ctx, reqURL, &body); err != nil {
		return nil, err
	}

	return &Rating{
		Score: math.Round(body.Rating*10) / 10,
		Votes: body.Votes,
		URL:   fmt.Sprintf("https://trakt.tv/%ss/%s", mediaType, slug),
	}, nil
}

func (c *Client) search(ctx context.Context, reqURL string) ([]searchEntry, error) {
	var entries []searchEntry
	if err := c.getJSON(ctx, reqURL, &entries); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	return entries, nil
}

func (c *Client) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("trakt-api-version", "2")
	req.Header.Set("trakt-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		return fmt.Errorf("trakt API error: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
