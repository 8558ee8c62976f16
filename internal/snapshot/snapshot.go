//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package snapshot holds the currently published Dataset and swaps in a
// new one when the source changes.
package snapshot

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pgEdge/pgedge-retailmetrics/internal/loader"
	"github.com/pgEdge/pgedge-retailmetrics/internal/logging"
	"github.com/pgEdge/pgedge-retailmetrics/internal/model"
)

// ErrNoSnapshot is returned when no load has succeeded yet.
var ErrNoSnapshot = errors.New("no snapshot loaded")

// Snapshot is an immutable, fully loaded Dataset. Readers may hold on to it
// for as long as they like.
type Snapshot struct {
	ID        uuid.UUID
	Data      *model.Dataset
	Signature loader.Signature
	LoadedAt  time.Time
	Stats     loader.Stats
}

// Info is the JSON-friendly description of a Snapshot.
type Info struct {
	ID        string         `json:"id"`
	Source    string         `json:"source"`
	Signature string         `json:"signature"`
	LoadedAt  time.Time      `json:"loaded_at"`
	Rows      map[string]int `json:"rows"`
}

// Info describes snap as loaded from the named source.
func (snap *Snapshot) Info(source string) Info {
	return Info{
		ID:        snap.ID.String(),
		Source:    source,
		Signature: string(snap.Signature),
		LoadedAt:  snap.LoadedAt,
		Rows:      snap.Data.RowCounts(),
	}
}

// Store publishes snapshots. Loads run off to the side and the new
// Dataset only becomes visible once it is complete.
type Store struct {
	src     loader.Source
	current atomic.Pointer[Snapshot]
	mu      sync.Mutex
	log     zerolog.Logger

	loads    atomic.Int64
	failures atomic.Int64
}

// NewStore creates an empty Store reading from src.
func NewStore(src loader.Source) *Store {
	return &Store{
		src: src,
		log: logging.Component("snapshot").With().Str("source", src.Name()).Logger(),
	}
}

// Source returns the source the store reads from.
func (s *Store) Source() loader.Source {
	return s.src
}

// Current returns the published snapshot, or nil before the first
// successful load.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Info describes the published snapshot.
func (s *Store) Info() (Info, error) {
	snap := s.Current()
	if snap == nil {
		return Info{}, ErrNoSnapshot
	}
	return snap.Info(s.src.Name()), nil
}

// Loads returns the number of successful loads.
func (s *Store) Loads() int64 {
	return s.loads.Load()
}

// Failures returns the number of failed loads.
func (s *Store) Failures() int64 {
	return s.failures.Load()
}

// Refresh loads the source if its signature differs from the published
// snapshot. It reports whether a new snapshot was published. On failure
// the previous snapshot stays in place.
func (s *Store) Refresh(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sig, err := s.src.Signature(ctx)
	if err != nil {
		s.failures.Add(1)
		s.log.Warn().Err(err).Msg("Could not read source signature; keeping current snapshot")
		return false, err
	}
	if cur := s.current.Load(); cur != nil && cur.Signature == sig {
		s.log.Debug().Str("signature", string(sig)).Msg("Source unchanged")
		return false, nil
	}
	if err := s.load(ctx, sig); err != nil {
		return false, err
	}
	return true, nil
}

// Reload loads the source unconditionally.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sig, err := s.src.Signature(ctx)
	if err != nil {
		s.failures.Add(1)
		return err
	}
	return s.load(ctx, sig)
}

// load must be called with mu held.
func (s *Store) load(ctx context.Context, sig loader.Signature) error {
	ds, stats, err := loader.Load(ctx, s.src)
	if err != nil {
		s.failures.Add(1)
		s.log.Error().Err(err).Msg("Load failed; keeping current snapshot")
		return err
	}

	snap := &Snapshot{
		ID:        uuid.New(),
		Data:      ds,
		Signature: sig,
		LoadedAt:  time.Now().UTC(),
		Stats:     stats,
	}
	s.current.Store(snap)
	s.loads.Add(1)

	s.log.Info().
		Str("snapshot_id", snap.ID.String()).
		Dur("duration", stats.Duration).
		Msg("Snapshot published")
	return nil
}
