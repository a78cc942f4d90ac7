package snapshot

import (
	"fmt"
	"time"
)

// Run is one persisted poll cycle, for `embywatch status`.
type Run struct {
	ID              int64
	StartedAt       time.Time
	FinishedAt      time.Time
	ItemsSeen       int
	ChangesDetected int
	Delivered       int
	Failed          int
	Error           string
}

// RecordRun appends a run to the history.
func (s *Store) RecordRun(r *Run) error {
	result, err := s.db.Exec(`
		INSERT INTO runs (started_at, finished_at, items_seen, changes_detected, delivered, failed, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.StartedAt, r.FinishedAt, r.ItemsSeen, r.ChangesDetected, r.Delivered, r.Failed, r.Error,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	r.ID = id
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, finished_at, items_seen, changes_detected, delivered, failed, error
		FROM runs
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.ItemsSeen,
			&r.ChangesDetected, &r.Delivered, &r.Failed, &r.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
