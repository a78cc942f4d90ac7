package catalog

import (
	"time"

	"github.com/vmunix/embywatch/internal/media"
	"github.com/vmunix/embywatch/pkg/quality"
)

// normalizeItem maps a raw server record into the canonical model.
// Upstream records routinely miss fields; every absence has a defined
// fallback so one sparse record never aborts a run.
func normalizeItem(raw rawItem, fetchedAt time.Time) media.Item {
	item := media.Item{
		ID:          raw.ID,
		Kind:        normalizeKind(raw.Type),
		Title:       raw.Name,
		SeriesTitle: raw.SeriesName,
		Season:      raw.ParentIndexNumber,
		Episode:     raw.IndexNumber,
		CreatedAt:   parseTimestamp(raw.DateCreated, fetchedAt),
	}
	if raw.ProductionYear > 0 {
		year := raw.ProductionYear
		item.Year = &year
	}

	for _, src := range raw.MediaSources {
		item.Sources = append(item.Sources, normalizeSource(src, raw.Path))
	}
	if len(item.Sources) == 0 {
		// Sourceless items stay trackable through a synthetic source
		// keyed by the item itself.
		item.Sources = []media.Source{{
			ID:         raw.ID,
			Resolution: resolutionLabel(raw.Path, nil),
		}}
	}
	item.Sources = media.CanonicalSources(item.Sources)

	return item
}

func normalizeSource(raw rawSource, itemPath string) media.Source {
	src := media.Source{ID: raw.ID}

	path := raw.Path
	if path == "" {
		path = itemPath
	}
	src.Resolution = resolutionLabel(path, raw.MediaStreams)

	for _, stream := range raw.MediaStreams {
		if stream.Type == "Audio" && stream.Channels > 0 {
			channels := stream.Channels
			src.Channels = &channels
			break
		}
	}

	if ts := parseTimestamp(raw.DateCreated, time.Time{}); !ts.IsZero() {
		src.AddedAt = &ts
	}

	return src
}

// resolutionLabel prefers an explicit token in the path, then the
// first video stream's height, then Unknown.
func resolutionLabel(path string, streams []rawStream) string {
	if label := quality.ParseResolution(path); label != "" {
		return label
	}
	for _, stream := range streams {
		if stream.Type == "Video" {
			if label := quality.FromHeight(stream.Height); label != "" {
				return label
			}
			break
		}
	}
	return quality.Unknown
}

func normalizeKind(itemType string) media.Kind {
	if itemType == "Episode" {
		return media.KindEpisode
	}
	return media.KindMovie
}

// parseTimestamp handles the server's RFC3339-ish DateCreated values,
// falling back to the given default when absent or malformed.
func parseTimestamp(value string, fallback time.Time) time.Time {
	if value == "" {
		return fallback
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return fallback
}
