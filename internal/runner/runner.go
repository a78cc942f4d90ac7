// Package runner orchestrates one poll cycle: load the snapshot,
// fetch the catalog, diff, enrich and deliver each change, then merge
// delivered changes back into the snapshot.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/embywatch/internal/diff"
	"github.com/vmunix/embywatch/internal/enrich"
	"github.com/vmunix/embywatch/internal/media"
	"github.com/vmunix/embywatch/internal/snapshot"
)

// Catalog fetches the current library state.
type Catalog interface {
	Fetch(ctx context.Context) ([]media.Item, error)
	PrimaryImageURL(itemID string) string
}

// Enricher gathers best-effort metadata for an item.
type Enricher interface {
	Enrich(ctx context.Context, item *media.Item) enrich.Result
}

// Dispatcher delivers one change notification.
type Dispatcher interface {
	Deliver(ctx context.Context, change diff.Change, meta enrich.Result) error
}

// Store persists the notified state between runs.
type Store interface {
	Load() (media.Snapshot, error)
	Apply(delta []media.Item) error
	RecordRun(r *snapshot.Run) error
}

// Config for a Runner.
type Config struct {
	Concurrency  int           // concurrent enrich+deliver workers
	RecentWindow time.Duration // zero disables the recency cutoff
}

// Result summarizes one run.
type Result struct {
	ItemsSeen int
	Detected  int
	Delivered int
	Failed    int
}

// Runner executes poll cycles.
type Runner struct {
	catalog    Catalog
	enricher   Enricher
	dispatcher Dispatcher
	store      Store
	config     Config
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a runner.
func New(catalog Catalog, enricher Enricher, dispatcher Dispatcher, store Store, cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 4
	}
	return &Runner{
		catalog:    catalog,
		enricher:   enricher,
		dispatcher: dispatcher,
		store:      store,
		config:     cfg,
		logger:     logger.With("component", "runner"),
		now:        time.Now,
	}
}

// Run executes one cycle. A catalog failure aborts before any
// notification; per-event enrichment or delivery failures are counted
// and leave the event out of the snapshot so it is retried next run.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	started := r.now()

	previous, err := r.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	current, err := r.catalog.Fetch(ctx)
	if err != nil {
		r.recordRun(started, &Result{}, err)
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	var cutoff *time.Time
	if r.config.RecentWindow > 0 {
		t := started.Add(-r.config.RecentWindow)
		cutoff = &t
	}

	changes := diff.Changes(previous, current, cutoff)
	result := &Result{ItemsSeen: len(current), Detected: len(changes)}

	r.logger.Info("catalog diffed",
		"items", len(current),
		"known", len(previous),
		"changes", len(changes),
	)

	delivered := r.dispatchAll(ctx, changes, result)

	var runErr error
	if len(delivered) > 0 {
		if err := r.store.Apply(delivered); err != nil {
			// Delivered-but-unsaved changes will be announced again
			// next run; surface the failure as the run's error.
			runErr = fmt.Errorf("save snapshot: %w", err)
		}
	}

	r.recordRun(started, result, runErr)
	return result, runErr
}

// dispatchAll enriches and delivers changes with bounded concurrency.
// Returns the delivered per-item source deltas, in deterministic
// (input) order regardless of worker scheduling.
func (r *Runner) dispatchAll(ctx context.Context, changes []diff.Change, result *Result) []media.Item {
	var mu sync.Mutex
	deliveredAt := make([]bool, len(changes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Concurrency)

	for i, change := range changes {
		g.Go(func() error {
			meta := r.enricher.Enrich(ctx, &change.Item)
			if meta.PosterURL == "" {
				meta.PosterURL = r.catalog.PrimaryImageURL(change.Item.ID)
			}

			if err := r.dispatcher.Deliver(ctx, change, meta); err != nil {
				r.logger.Error("delivery failed, change will retry next run",
					"item_id", change.Item.ID,
					"kind", change.Kind,
					"error", err,
				)
				mu.Lock()
				result.Failed++
				mu.Unlock()
				if errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			}

			mu.Lock()
			result.Delivered++
			deliveredAt[i] = true
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	var delta []media.Item
	for i, change := range changes {
		if !deliveredAt[i] {
			continue
		}
		item := change.Item
		item.Sources = change.AddedSources
		delta = append(delta, item)
	}
	return delta
}

func (r *Runner) recordRun(started time.Time, result *Result, runErr error) {
	run := &snapshot.Run{
		StartedAt:       started,
		FinishedAt:      r.now(),
		ItemsSeen:       result.ItemsSeen,
		ChangesDetected: result.Detected,
		Delivered:       result.Delivered,
		Failed:          result.Failed,
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if err := r.store.RecordRun(run); err != nil {
		r.logger.Warn("failed to record run history", "error", err)
	}
}

// Watch runs cycles on an interval until the context is canceled.
// Individual run failures are logged, never fatal for the loop.
func (r *Runner) Watch(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := r.Run(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Error("run failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
