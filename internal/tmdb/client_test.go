package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_Movie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/search/movie", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "Heat", r.URL.Query().Get("query"))
		assert.Equal(t, "1995", r.URL.Query().Get("year"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": [
			{"id": 949, "title": "Heat", "release_date": "1995-12-15"},
			{"id": 12205, "title": "Heat", "release_date": "1986-12-12"}
		]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	results, err := client.Search(context.Background(), TypeMovie, "Heat", 1995)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, int64(949), results[0].ID)
	assert.Equal(t, "Heat", results[0].DisplayTitle())
	assert.Equal(t, 1995, results[0].Year())
}

func TestSearch_TVIgnoresYear(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/search/tv", r.URL.Path)
		assert.Empty(t, r.URL.Query().Get("year"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": [{"id": 1438, "name": "The Wire", "first_air_date": "2002-06-02"}]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	results, err := client.Search(context.Background(), TypeTV, "The Wire", 2002)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "The Wire", results[0].DisplayTitle())
	assert.Equal(t, 2002, results[0].Year())
}

func TestSearch_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	_, err := client.Search(context.Background(), TypeMovie, "zzzzz", 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDetails_LocalizedOverview(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/movie/949", r.URL.Path)
		assert.Equal(t, "it-IT", r.URL.Query().Get("language"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"overview": "Una rapina finita male.", "poster_path": "/abc.jpg", "vote_average": 8.3}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	details, err := client.Details(context.Background(), TypeMovie, 949, "it-IT")
	require.NoError(t, err)
	assert.Equal(t, "Una rapina finita male.", details.Overview)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/abc.jpg", details.PosterURL("w500"))
}

func TestDetails_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	_, err := client.Details(context.Background(), TypeMovie, 99999999, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDetails_Cached(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"overview": "cached", "vote_average": 7.0}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	for i := 0; i < 3; i++ {
		details, err := client.Details(context.Background(), TypeMovie, 949, "en-US")
		require.NoError(t, err)
		assert.Equal(t, "cached", details.Overview)
	}
	assert.Equal(t, int32(1), calls.Load())

	// A different language is a distinct cache entry.
	_, err := client.Details(context.Background(), TypeMovie, 949, "it-IT")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDetails_CacheExpiry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"overview": "x"}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithCacheTTL(time.Nanosecond))

	_, err := client.Details(context.Background(), TypeMovie, 949, "")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = client.Details(context.Background(), TypeMovie, 949, "")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSearch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	_, err := client.Search(context.Background(), TypeMovie, "Heat", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TMDB API error")
}
