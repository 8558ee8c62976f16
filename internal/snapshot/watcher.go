//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
)

// Watcher polls a Store's source on a fixed interval and refreshes it.
type Watcher struct {
	store    *Store
	interval time.Duration
	onReload func(*Snapshot)
}

// NewWatcher creates a Watcher. onReload, if not nil, is called after every
// refresh that published a new snapshot.
func NewWatcher(store *Store, interval time.Duration, onReload func(*Snapshot)) *Watcher {
	return &Watcher{store: store, interval: interval, onReload: onReload}
}

// Run polls until ctx is cancelled. The first poll happens immediately.
// Polls never overlap; a poll that is still running when the next one is
// due causes that one to be skipped.
func (w *Watcher) Run(ctx context.Context) error {
	if w.interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", w.interval)
	}

	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	_, err := scheduler.Every(w.interval).Do(func() {
		w.poll(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule poll: %w", err)
	}

	w.store.log.Info().Dur("interval", w.interval).Msg("Watching source")
	scheduler.StartAsync()
	<-ctx.Done()
	scheduler.Stop()
	w.store.log.Info().Msg("Stopped watching source")
	return nil
}

func (w *Watcher) poll(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	changed, err := w.store.Refresh(ctx)
	if err != nil || !changed {
		return
	}
	if w.onReload != nil {
		w.onReload(w.store.Current())
	}
}
