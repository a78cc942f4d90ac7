// Package diff computes the change events between the last-notified
// snapshot and the current catalog state.
//
// Changes is a pure function of its inputs: no I/O, no clock, no
// side effects. Given identical inputs it produces identical,
// identically ordered output.
package diff

import (
	"time"

	"github.com/vmunix/embywatch/internal/media"
)

// Kind classifies a change.
type Kind string

const (
	// KindNewItem marks an item absent from the previous snapshot.
	KindNewItem Kind = "new_item"
	// KindUpdatedSources marks an already-known item that gained sources.
	KindUpdatedSources Kind = "updated_sources"
)

// Change is one announceable event: an item plus the sources that
// must be announced for it.
type Change struct {
	Item         media.Item
	Kind         Kind
	AddedSources []media.Source // all sources for NewItem, the delta otherwise
	OccurredAt   time.Time
}

// Changes compares the previous snapshot against the current catalog
// state and returns the events to announce.
//
// Items unknown to the snapshot become NewItem events carrying every
// source. Known items contribute an UpdatedSources event when the
// current state has source IDs the snapshot lacks; removed sources
// never produce events. A non-nil cutoff suppresses events whose
// relevant timestamp predates it: the item's creation time for
// NewItem, the per-source timestamp (item creation time when absent)
// for UpdatedSources.
//
// Events are ordered by the item's position in current; sources within
// an event are ordered by ascending resolution rank, unknown last.
func Changes(previous media.Snapshot, current []media.Item, cutoff *time.Time) []Change {
	var changes []Change

	for _, item := range current {
		item.Sources = media.CanonicalSources(item.Sources)

		prev, known := previous[item.ID]
		if !known {
			if len(item.Sources) == 0 {
				continue
			}
			if cutoff != nil && item.CreatedAt.Before(*cutoff) {
				continue
			}
			added := make([]media.Source, len(item.Sources))
			copy(added, item.Sources)
			media.SortSourcesByResolution(added)
			changes = append(changes, Change{
				Item:         item,
				Kind:         KindNewItem,
				AddedSources: added,
				OccurredAt:   item.CreatedAt,
			})
			continue
		}

		added := addedSources(prev, item)
		if len(added) == 0 {
			continue
		}
		if cutoff != nil && !anyWithinCutoff(added, item.CreatedAt, *cutoff) {
			continue
		}
		media.SortSourcesByResolution(added)
		changes = append(changes, Change{
			Item:         item,
			Kind:         KindUpdatedSources,
			AddedSources: added,
			OccurredAt:   latestTimestamp(added, item.CreatedAt),
		})
	}

	return changes
}

// addedSources returns current sources whose IDs the snapshot item
// lacks. Identity is the source ID alone: two distinct encodes sharing
// a resolution label are still distinct sources.
func addedSources(prev, current media.Item) []media.Source {
	seen := make(map[string]bool, len(prev.Sources))
	for _, src := range prev.Sources {
		seen[src.ID] = true
	}

	var added []media.Source
	for _, src := range current.Sources {
		if !seen[src.ID] {
			added = append(added, src)
		}
	}
	return added
}

// anyWithinCutoff reports whether at least one source meets the
// recency filter, using the item timestamp for sources without one.
func anyWithinCutoff(sources []media.Source, itemCreated time.Time, cutoff time.Time) bool {
	for _, src := range sources {
		ts := itemCreated
		if src.AddedAt != nil {
			ts = *src.AddedAt
		}
		if !ts.Before(cutoff) {
			return true
		}
	}
	return false
}

func latestTimestamp(sources []media.Source, itemCreated time.Time) time.Time {
	latest := itemCreated
	for _, src := range sources {
		if src.AddedAt != nil && src.AddedAt.After(latest) {
			latest = *src.AddedAt
		}
	}
	return latest
}
