package snapshot

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/vmunix/embywatch/internal/media"
)

// Load returns the full previously-notified state keyed by item ID.
func (s *Store) Load() (media.Snapshot, error) {
	items, err := loadItems(s.db)
	if err != nil {
		return nil, err
	}
	if err := loadSources(s.db, items); err != nil {
		return nil, err
	}
	return items, nil
}

func loadItems(q querier) (media.Snapshot, error) {
	rows, err := q.Query(`
		SELECT id, kind, title, series_title, season, episode, year, created_at
		FROM items`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	snap := make(media.Snapshot)
	for rows.Next() {
		var item media.Item
		var season, episode, year sql.NullInt64
		if err := rows.Scan(&item.ID, &item.Kind, &item.Title, &item.SeriesTitle,
			&season, &episode, &year, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		item.Season = nullableInt(season)
		item.Episode = nullableInt(episode)
		item.Year = nullableInt(year)
		snap[item.ID] = item
	}
	return snap, rows.Err()
}

func loadSources(q querier, snap media.Snapshot) error {
	rows, err := q.Query(`
		SELECT item_id, source_id, resolution, channels, added_at
		FROM sources`)
	if err != nil {
		return fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var itemID string
		var src media.Source
		var channels sql.NullInt64
		var addedAt sql.NullTime
		if err := rows.Scan(&itemID, &src.ID, &src.Resolution, &channels, &addedAt); err != nil {
			return fmt.Errorf("scan source: %w", err)
		}
		src.Channels = nullableInt(channels)
		if addedAt.Valid {
			ts := addedAt.Time
			src.AddedAt = &ts
		}
		item, ok := snap[itemID]
		if !ok {
			// Orphaned source row; harmless, skip it.
			continue
		}
		item.Sources = append(item.Sources, src)
		snap[itemID] = item
	}
	return rows.Err()
}

// Apply records delivered changes: each item is upserted and each of
// its listed sources marked notified. One transaction covers the whole
// delta so a failed save leaves the previous state intact.
func (s *Store) Apply(delta []media.Item) error {
	if len(delta) == 0 {
		return nil
	}

	tx, err := s.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, item := range delta {
		if err := tx.UpsertItem(item); err != nil {
			return err
		}
		for _, src := range item.Sources {
			if err := tx.UpsertSource(item.ID, src); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot delta: %w", err)
	}
	return nil
}

func upsertItem(q querier, item media.Item) error {
	_, err := q.Exec(`
		INSERT INTO items (id, kind, title, series_title, season, episode, year, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			title = excluded.title,
			series_title = excluded.series_title,
			season = excluded.season,
			episode = excluded.episode,
			year = excluded.year`,
		item.ID, string(item.Kind), item.Title, item.SeriesTitle,
		intValue(item.Season), intValue(item.Episode), intValue(item.Year), item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert item %s: %w", item.ID, err)
	}
	return nil
}

// UpsertItem inserts or updates an item row.
func (t *Tx) UpsertItem(item media.Item) error { return upsertItem(t.tx, item) }

func upsertSource(q querier, itemID string, src media.Source, notifiedAt time.Time) error {
	_, err := q.Exec(`
		INSERT INTO sources (item_id, source_id, resolution, channels, added_at, notified_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(item_id, source_id) DO UPDATE SET
			resolution = excluded.resolution,
			channels = excluded.channels,
			added_at = excluded.added_at`,
		itemID, src.ID, src.Resolution, intValue(src.Channels), timeValue(src.AddedAt), notifiedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert source %s/%s: %w", itemID, src.ID, err)
	}
	return nil
}

// UpsertSource marks one source of an item as notified.
func (t *Tx) UpsertSource(itemID string, src media.Source) error {
	return upsertSource(t.tx, itemID, src, t.now())
}

// Counts returns how many items and sources the snapshot tracks.
func (s *Store) Counts() (items, sources int, err error) {
	if err = s.db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&items); err != nil {
		return 0, 0, fmt.Errorf("count items: %w", err)
	}
	if err = s.db.QueryRow(`SELECT COUNT(*) FROM sources`).Scan(&sources); err != nil {
		return 0, 0, fmt.Errorf("count sources: %w", err)
	}
	return items, sources, nil
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func intValue(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func timeValue(v *time.Time) any {
	if v == nil {
		return nil
	}
	return *v
}
