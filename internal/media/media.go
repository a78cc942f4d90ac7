// Package media defines the canonical model for catalog content
// (movies, episodes, and their source variants).
package media

import (
	"sort"
	"time"

	"github.com/vmunix/embywatch/pkg/quality"
)

// Kind distinguishes movies from episodes.
type Kind string

const (
	KindMovie   Kind = "movie"
	KindEpisode Kind = "episode"
)

// Item represents one logical title in the catalog.
type Item struct {
	ID          string // opaque catalog identifier, unique per snapshot
	Kind        Kind
	Title       string
	SeriesTitle string // episodes only
	Season      *int
	Episode     *int
	Year        *int
	CreatedAt   time.Time
	Sources     []Source
}

// Source is one physical/encoded variant of an item. The
// (item ID, source ID) pair is globally unique; Resolution and
// Channels are descriptive only and never part of identity.
type Source struct {
	ID         string
	Resolution string // "1080p", "2160p", ... or quality.Unknown
	Channels   *int
	AddedAt    *time.Time // when the catalog reports per-source timestamps
}

// AudioLabel derives the audio-format label for this source.
// Absent channel counts assume stereo.
func (s Source) AudioLabel() string {
	if s.Channels == nil {
		return quality.AudioLabel(2)
	}
	return quality.AudioLabel(*s.Channels)
}

// CanonicalSources dedupes sources by ID, last-seen wins, preserving
// the order of first appearance. Duplicate source IDs within one item
// are a catalog data error but must not corrupt set difference.
func CanonicalSources(sources []Source) []Source {
	if len(sources) < 2 {
		return sources
	}
	index := make(map[string]int, len(sources))
	out := make([]Source, 0, len(sources))
	for _, src := range sources {
		if i, ok := index[src.ID]; ok {
			out[i] = src
			continue
		}
		index[src.ID] = len(out)
		out = append(out, src)
	}
	return out
}

// SortSourcesByResolution orders sources by ascending resolution rank,
// unknown last. Ties keep their existing order.
func SortSourcesByResolution(sources []Source) {
	sort.SliceStable(sources, func(i, j int) bool {
		return quality.Rank(sources[i].Resolution) < quality.Rank(sources[j].Resolution)
	})
}

// Snapshot maps item IDs to the last-notified state of each item.
type Snapshot map[string]Item

// DisplayTitle returns the human-facing title: movies as-is, episodes
// as "Series - Title".
func (i *Item) DisplayTitle() string {
	if i.Kind == KindEpisode && i.SeriesTitle != "" {
		return i.SeriesTitle + " - " + i.Title
	}
	return i.Title
}

// SearchTitle returns the title used for metadata lookups: the series
// title for episodes, the movie title otherwise.
func (i *Item) SearchTitle() string {
	if i.Kind == KindEpisode && i.SeriesTitle != "" {
		return i.SeriesTitle
	}
	return i.Title
}
