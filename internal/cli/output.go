//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/pgEdge/pgedge-retailmetrics/internal/catalog"
	"github.com/pgEdge/pgedge-retailmetrics/internal/snapshot"
	"github.com/pgEdge/pgedge-retailmetrics/internal/workload"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Document is the JSON written for one batch of reports.
type Document struct {
	RunID       string           `json:"run_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Snapshot    snapshot.Info    `json:"snapshot"`
	Results     []catalog.Result `json:"results"`
}

// runBatch runs reports against snap, which was loaded from source.
func runBatch(ctx context.Context, e *workload.Executor, snap *snapshot.Snapshot, source string,
	reports []catalog.Report) (*Document, error) {
	if snap == nil {
		return nil, snapshot.ErrNoSnapshot
	}

	results, err := e.Run(ctx, snap, reports)
	if err != nil {
		return nil, err
	}

	return &Document{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Snapshot:    snap.Info(source),
		Results:     results,
	}, nil
}

func writeDocument(w io.Writer, doc *Document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode reports: %w", err)
	}
	b = append(b, '\n')
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("failed to write reports: %w", err)
	}
	return nil
}

// writeOutput writes doc to path, or to stdout when path is empty.
func writeOutput(stdout io.Writer, path string, doc *Document) error {
	if path == "" {
		return writeDocument(stdout, doc)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := writeDocument(file, doc); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
