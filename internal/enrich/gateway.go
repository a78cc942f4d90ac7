// Package enrich looks up third-party metadata for change events.
//
// Every provider call is best-effort: failures are logged and the
// corresponding fields left empty, never aborting the event. Diff
// correctness does not depend on anything in this package.
package enrich

import (
	"context"
	"log/slog"
	"strings"

	"github.com/vmunix/embywatch/internal/media"
	"github.com/vmunix/embywatch/internal/tmdb"
	"github.com/vmunix/embywatch/internal/trakt"
	"github.com/vmunix/embywatch/pkg/titlematch"
)

// Result carries whatever metadata could be gathered for a title.
// Absent fields are zero-valued, never an error.
type Result struct {
	PosterURL    string
	Overview     string
	Rating       *float64
	TraktURL     string
	MatchedTitle string // provider's canonical title, "" when unmatched
	Year         int
}

const posterSize = "w500"

// Gateway fans out to TMDB and Trakt for one title at a time.
type Gateway struct {
	tmdb     *tmdb.Client
	trakt    *trakt.Client
	language string
	fallback string
	logger   *slog.Logger
}

// New creates a gateway. Either client may be nil, disabling that
// provider. Overview lookups use language first, then fallback when
// the localized overview is blank.
func New(tmdbClient *tmdb.Client, traktClient *trakt.Client, language, fallback string, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		tmdb:     tmdbClient,
		trakt:    traktClient,
		language: language,
		fallback: fallback,
		logger:   logger.With("component", "enrich"),
	}
}

// Enrich gathers metadata for an item. Always returns a usable Result.
func (g *Gateway) Enrich(ctx context.Context, item *media.Item) Result {
	var res Result
	if g.tmdb == nil {
		return res
	}

	title := item.SearchTitle()
	year := 0
	if item.Year != nil {
		year = *item.Year
	}

	mediaType := tmdb.TypeMovie
	traktType := trakt.TypeMovie
	if item.Kind == media.KindEpisode {
		mediaType = tmdb.TypeTV
		traktType = trakt.TypeShow
	}

	match := g.searchTMDB(ctx, mediaType, title, year)
	if match == nil {
		return res
	}
	res.MatchedTitle = match.DisplayTitle()
	res.Year = match.Year()

	g.fillDetails(ctx, mediaType, match.ID, &res)
	g.fillRating(ctx, traktType, match.ID, res.MatchedTitle, res.Year, &res)

	return res
}

// searchTMDB picks the best search result by fuzzy title match,
// falling back to the provider's top-ranked result when no candidate
// clears the confidence threshold.
func (g *Gateway) searchTMDB(ctx context.Context, mediaType tmdb.MediaType, title string, year int) *tmdb.SearchResult {
	results, err := g.tmdb.Search(ctx, mediaType, title, year)
	if err != nil {
		g.logger.Warn("tmdb search failed", "title", title, "error", err)
		return nil
	}

	candidates := make([]string, len(results))
	for i := range results {
		candidates[i] = results[i].DisplayTitle()
	}

	best := titlematch.Best(title, candidates)
	if best.Index >= 0 {
		return &results[best.Index]
	}
	return &results[0]
}

func (g *Gateway) fillDetails(ctx context.Context, mediaType tmdb.MediaType, id int64, res *Result) {
	details, err := g.tmdb.Details(ctx, mediaType, id, g.language)
	if err != nil {
		g.logger.Warn("tmdb details failed", "tmdb_id", id, "language", g.language, "error", err)
		return
	}

	res.PosterURL = details.PosterURL(posterSize)
	res.Overview = strings.TrimSpace(details.Overview)

	// Locale fallback: localized overviews are often missing; retry in
	// the fallback language before giving up on the field.
	if res.Overview == "" && g.fallback != "" && g.fallback != g.language {
		fallback, err := g.tmdb.Details(ctx, mediaType, id, g.fallback)
		if err != nil {
			g.logger.Warn("tmdb fallback details failed", "tmdb_id", id, "language", g.fallback, "error", err)
			return
		}
		res.Overview = strings.TrimSpace(fallback.Overview)
		if res.PosterURL == "" {
			res.PosterURL = fallback.PosterURL(posterSize)
		}
	}
}

func (g *Gateway) fillRating(ctx context.Context, traktType trakt.MediaType, tmdbID int64, title string, year int, res *Result) {
	if g.trakt == nil {
		return
	}

	slug, err := g.trakt.LookupTMDB(ctx, traktType, tmdbID, title, year)
	if err != nil {
		g.logger.Warn("trakt lookup failed", "tmdb_id", tmdbID, "title", title, "error", err)
		return
	}

	rating, err := g.trakt.GetRating(ctx, traktType, slug)
	if err != nil {
		g.logger.Warn("trakt rating failed", "slug", slug, "error", err)
		return
	}

	res.Rating = &rating.Score
	res.TraktURL = rating.URL
}
