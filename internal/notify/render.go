package notify

import (
	"fmt"
	"strings"

	"github.com/vmunix/embywatch/internal/diff"
	"github.com/vmunix/embywatch/internal/enrich"
	"github.com/vmunix/embywatch/internal/media"
)

// renderCaption builds the Markdown caption for one change event:
// header for the change kind, bold title with year, resolution list,
// overview, and the Trakt rating line when available.
func renderCaption(change diff.Change, meta enrich.Result) string {
	var lines []string

	lines = append(lines, header(change), "")

	title := change.Item.DisplayTitle()
	if meta.MatchedTitle != "" && change.Item.Kind == media.KindMovie {
		title = meta.MatchedTitle
	}
	year := 0
	if change.Item.Year != nil {
		year = *change.Item.Year
	} else if meta.Year > 0 {
		year = meta.Year
	}
	if year > 0 {
		lines = append(lines, fmt.Sprintf("*%s (%d)*", escapeMarkdown(title), year))
	} else {
		lines = append(lines, fmt.Sprintf("*%s*", escapeMarkdown(title)))
	}

	if episode := episodeLine(change.Item); episode != "" {
		lines = append(lines, episode)
	}
	lines = append(lines, "")

	if resolutions := resolutionList(change.AddedSources); resolutions != "" {
		lines = append(lines, "Resolutions: "+resolutions, "")
	}

	if meta.Overview != "" {
		lines = append(lines, meta.Overview, "")
	}

	if meta.Rating != nil && meta.TraktURL != "" {
		lines = append(lines, fmt.Sprintf("[Trakt](%s) ⭐ *%.1f*", meta.TraktURL, *meta.Rating))
	}

	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func header(change diff.Change) string {
	switch {
	case change.Kind == diff.KindUpdatedSources:
		return "*New version available*"
	case change.Item.Kind == media.KindEpisode:
		return "*New episode*"
	default:
		return "*New movie*"
	}
}

func episodeLine(item media.Item) string {
	if item.Kind != media.KindEpisode || item.Season == nil || item.Episode == nil {
		return ""
	}
	return fmt.Sprintf("S%02dE%02d", *item.Season, *item.Episode)
}

// resolutionList joins the distinct labels of the announced sources,
// preserving their rank order, with the audio label alongside when a
// channel count is known.
func resolutionList(sources []media.Source) string {
	seen := make(map[string]bool, len(sources))
	var labels []string
	for _, src := range sources {
		label := src.Resolution
		if src.Channels != nil {
			label = fmt.Sprintf("%s %s", src.Resolution, src.AudioLabel())
		}
		if seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	return strings.Join(labels, ", ")
}

// escapeMarkdown guards the few characters that break legacy Markdown
// parse mode inside bold runs.
func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer("*", "\\*", "_", "\\_", "[", "\\[", "`", "\\`")
	return replacer.Replace(s)
}
