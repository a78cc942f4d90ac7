package enrich

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/embywatch/internal/media"
	"github.com/vmunix/embywatch/internal/tmdb"
	"github.com/vmunix/embywatch/internal/trakt"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

func TestEnrich_MovieFullPipeline(t *testing.T) {
	tmdbServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/3/search/movie":
			w.Write([]byte(`{"results": [{"id": 949, "title": "Heat", "release_date": "1995-12-15"}]}`))
		case "/3/movie/949":
			assert.Equal(t, "it-IT", r.URL.Query().Get("language"))
			w.Write([]byte(`{"overview": "Una rapina finita male.", "poster_path": "/abc.jpg", "vote_average": 8.3}`))
		default:
			t.Errorf("unexpected tmdb path %s", r.URL.Path)
		}
	}))
	defer tmdbServer.Close()

	traktServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/search/tmdb/949":
			w.Write([]byte(`[{"movie": {"title": "Heat", "year": 1995, "ids": {"slug": "heat-1995"}}}]`))
		case "/movies/heat-1995/ratings":
			w.Write([]byte(`{"rating": 8.3, "votes": 12345}`))
		default:
			t.Errorf("unexpected trakt path %s", r.URL.Path)
		}
	}))
	defer traktServer.Close()

	gateway := New(
		tmdb.NewClient("k", tmdb.WithBaseURL(tmdbServer.URL)),
		trakt.New("k", trakt.WithBaseURL(traktServer.URL)),
		"it-IT", "en-US", testLogger(),
	)

	item := &media.Item{ID: "m1", Kind: media.KindMovie, Title: "Heat", Year: ptr(1995)}
	res := gateway.Enrich(context.Background(), item)

	assert.Equal(t, "Heat", res.MatchedTitle)
	assert.Equal(t, 1995, res.Year)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/abc.jpg", res.PosterURL)
	assert.Equal(t, "Una rapina finita male.", res.Overview)
	require.NotNil(t, res.Rating)
	assert.Equal(t, 8.3, *res.Rating)
	assert.Equal(t, "https://trakt.tv/movies/heat-1995", res.TraktURL)
}

func TestEnrich_EpisodeSearchesSeries(t *testing.T) {
	tmdbServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/3/search/tv":
			assert.Equal(t, "The Wire", r.URL.Query().Get("query"))
			w.Write([]byte(`{"results": [{"id": 1438, "name": "The Wire", "first_air_date": "2002-06-02"}]}`))
		case "/3/tv/1438":
			w.Write([]byte(`{"overview": "Baltimora.", "poster_path": "/wire.jpg"}`))
		default:
			t.Errorf("unexpected tmdb path %s", r.URL.Path)
		}
	}))
	defer tmdbServer.Close()

	gateway := New(tmdb.NewClient("k", tmdb.WithBaseURL(tmdbServer.URL)), nil, "it-IT", "en-US", testLogger())

	item := &media.Item{
		ID:          "e1",
		Kind:        media.KindEpisode,
		Title:       "The Target",
		SeriesTitle: "The Wire",
		Season:      ptr(1),
		Episode:     ptr(1),
	}
	res := gateway.Enrich(context.Background(), item)

	assert.Equal(t, "The Wire", res.MatchedTitle)
	assert.Equal(t, 2002, res.Year)
	assert.Equal(t, "Baltimora.", res.Overview)
}

func TestEnrich_OverviewLocaleFallback(t *testing.T) {
	tmdbServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/3/search/movie":
			w.Write([]byte(`{"results": [{"id": 7, "title": "Obscure", "release_date": "2020-01-01"}]}`))
		case "/3/movie/7":
			if r.URL.Query().Get("language") == "it-IT" {
				w.Write([]byte(`{"overview": "", "poster_path": "/p.jpg"}`))
			} else {
				assert.Equal(t, "en-US", r.URL.Query().Get("language"))
				w.Write([]byte(`{"overview": "An obscure film.", "poster_path": "/p.jpg"}`))
			}
		default:
			t.Errorf("unexpected tmdb path %s", r.URL.Path)
		}
	}))
	defer tmdbServer.Close()

	gateway := New(tmdb.NewClient("k", tmdb.WithBaseURL(tmdbServer.URL)), nil, "it-IT", "en-US", testLogger())

	res := gateway.Enrich(context.Background(), &media.Item{ID: "m1", Kind: media.KindMovie, Title: "Obscure"})
	assert.Equal(t, "An obscure film.", res.Overview)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/p.jpg", res.PosterURL)
}

func TestEnrich_FuzzyMatchPrefersClosestTitle(t *testing.T) {
	tmdbServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/3/search/movie":
			// Provider ranks a sequel first; the fuzzy matcher should
			// still pick the exact title.
			w.Write([]byte(`{"results": [
				{"id": 2, "title": "Blade Runner 2049", "release_date": "2017-10-04"},
				{"id": 1, "title": "Blade Runner", "release_date": "1982-06-25"}
			]}`))
		case "/3/movie/1":
			w.Write([]byte(`{"overview": "Replicants.", "poster_path": "/br.jpg"}`))
		default:
			t.Errorf("unexpected tmdb path %s", r.URL.Path)
		}
	}))
	defer tmdbServer.Close()

	gateway := New(tmdb.NewClient("k", tmdb.WithBaseURL(tmdbServer.URL)), nil, "en-US", "", testLogger())

	res := gateway.Enrich(context.Background(), &media.Item{ID: "m1", Kind: media.KindMovie, Title: "Blade Runner"})
	assert.Equal(t, "Blade Runner", res.MatchedTitle)
	assert.Equal(t, "Replicants.", res.Overview)
}

func TestEnrich_TraktFailureDegradesGracefully(t *testing.T) {
	tmdbServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/3/search/movie":
			w.Write([]byte(`{"results": [{"id": 949, "title": "Heat", "release_date": "1995-12-15"}]}`))
		case "/3/movie/949":
			w.Write([]byte(`{"overview": "x", "poster_path": "/abc.jpg"}`))
		}
	}))
	defer tmdbServer.Close()

	traktServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer traktServer.Close()

	gateway := New(
		tmdb.NewClient("k", tmdb.WithBaseURL(tmdbServer.URL)),
		trakt.New("k", trakt.WithBaseURL(traktServer.URL)),
		"en-US", "", testLogger(),
	)

	res := gateway.Enrich(context.Background(), &media.Item{ID: "m1", Kind: media.KindMovie, Title: "Heat"})
	assert.Equal(t, "Heat", res.MatchedTitle)
	assert.Nil(t, res.Rating)
	assert.Empty(t, res.TraktURL)
}

func TestEnrich_SearchFailureReturnsEmptyResult(t *testing.T) {
	tmdbServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": []}`))
	}))
	defer tmdbServer.Close()

	gateway := New(tmdb.NewClient("k", tmdb.WithBaseURL(tmdbServer.URL)), nil, "en-US", "", testLogger())

	res := gateway.Enrich(context.Background(), &media.Item{ID: "m1", Kind: media.KindMovie, Title: "Nothing"})
	assert.Equal(t, Result{}, res)
}

func TestEnrich_NoProvidersConfigured(t *testing.T) {
	gateway := New(nil, nil, "", "", testLogger())
	res := gateway.Enrich(context.Background(), &media.Item{ID: "m1", Kind: media.KindMovie, Title: "Heat"})
	assert.Equal(t, Result{}, res)
}
