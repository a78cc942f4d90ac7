package snapshot

import (
	"database/sql"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/embywatch/internal/media"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(schemaSQL)
	require.NoError(t, err)

	return NewStore(db, testLogger())
}

func ptr[T any](v T) *T { return &v }

func TestStore_LoadEmpty(t *testing.T) {
	store := setupTestStore(t)

	snap, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestStore_ApplyLoadRoundtrip(t *testing.T) {
	store := setupTestStore(t)

	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	addedAt := created.Add(time.Hour)
	delta := []media.Item{{
		ID:        "m1",
		Kind:      media.KindMovie,
		Title:     "Heat",
		Year:      ptr(1995),
		CreatedAt: created,
		Sources: []media.Source{
			{ID: "s1", Resolution: "1080p", Channels: ptr(6)},
			{ID: "s2", Resolution: "2160p", AddedAt: &addedAt},
		},
	}, {
		ID:          "e1",
		Kind:        media.KindEpisode,
		Title:       "Pilot",
		SeriesTitle: "The Wire",
		Season:      ptr(1),
		Episode:     ptr(1),
		CreatedAt:   created,
		Sources:     []media.Source{{ID: "s3", Resolution: "720p"}},
	}}

	require.NoError(t, store.Apply(delta))

	snap, err := store.Load()
	require.NoError(t, err)
	require.Len(t, snap, 2)

	heat := snap["m1"]
	assert.Equal(t, media.KindMovie, heat.Kind)
	assert.Equal(t, "Heat", heat.Title)
	require.NotNil(t, heat.Year)
	assert.Equal(t, 1995, *heat.Year)
	require.Len(t, heat.Sources, 2)

	bySource := map[string]media.Source{}
	for _, src := range heat.Sources {
		bySource[src.ID] = src
	}
	assert.Equal(t, "1080p", bySource["s1"].Resolution)
	require.NotNil(t, bySource["s1"].Channels)
	assert.Equal(t, 6, *bySource["s1"].Channels)
	require.NotNil(t, bySource["s2"].AddedAt)
	assert.True(t, bySource["s2"].AddedAt.Equal(addedAt))

	pilot := snap["e1"]
	assert.Equal(t, "The Wire", pilot.SeriesTitle)
	require.NotNil(t, pilot.Season)
	assert.Equal(t, 1, *pilot.Season)
}

func TestStore_ApplyIsIncremental(t *testing.T) {
	store := setupTestStore(t)

	item := media.Item{
		ID:        "m1",
		Kind:      media.KindMovie,
		Title:     "Heat",
		CreatedAt: time.Now().UTC(),
		Sources:   []media.Source{{ID: "s1", Resolution: "1080p"}},
	}
	require.NoError(t, store.Apply([]media.Item{item}))

	// A later run delivers only the new source; the old one must survive.
	item.Sources = []media.Source{{ID: "s2", Resolution: "2160p"}}
	require.NoError(t, store.Apply([]media.Item{item}))

	snap, err := store.Load()
	require.NoError(t, err)
	require.Len(t, snap["m1"].Sources, 2)
}

func TestStore_ApplyUpsertIsIdempotent(t *testing.T) {
	store := setupTestStore(t)

	item := media.Item{
		ID:        "m1",
		Kind:      media.KindMovie,
		Title:     "Heat",
		CreatedAt: time.Now().UTC(),
		Sources:   []media.Source{{ID: "s1", Resolution: "1080p"}},
	}
	require.NoError(t, store.Apply([]media.Item{item}))
	require.NoError(t, store.Apply([]media.Item{item}))

	items, sources, err := store.Counts()
	require.NoError(t, err)
	assert.Equal(t, 1, items)
	assert.Equal(t, 1, sources)
}

func TestStore_ApplyEmptyDeltaIsNoop(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.Apply(nil))
}

func TestStore_RecordAndListRuns(t *testing.T) {
	store := setupTestStore(t)

	started := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		run := &Run{
			StartedAt:       started.Add(time.Duration(i) * time.Hour),
			FinishedAt:      started.Add(time.Duration(i)*time.Hour + time.Minute),
			ItemsSeen:       100 + i,
			ChangesDetected: i,
			Delivered:       i,
		}
		require.NoError(t, store.RecordRun(run))
		assert.NotZero(t, run.ID)
	}

	runs, err := store.RecentRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 102, runs[0].ItemsSeen, "newest first")
	assert.Equal(t, 101, runs[1].ItemsSeen)
}

func TestOpen_CreatesParentDirAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state", "snap.db")

	store, err := Open(path, testLogger())
	require.NoError(t, err)
	defer store.Close()

	_, err = os.Stat(filepath.Dir(path))
	require.NoError(t, err)

	snap, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestOpen_CorruptDatabaseStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.db")
	require.NoError(t, os.WriteFile(path, []byte("this is not a database"), 0o600))

	store, err := Open(path, testLogger())
	require.NoError(t, err)
	defer store.Close()

	snap, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, snap, "corrupt state is replaced with an empty snapshot")

	_, err = os.Stat(path + ".corrupt")
	assert.NoError(t, err, "corrupt file moved aside")
}
