//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable means a backing file or table could not be read.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrSchemaMismatch means a required column is absent.
	ErrSchemaMismatch = errors.New("schema mismatch")
)

// LoadError describes why a load failed. It wraps one of the sentinel
// errors above, so callers can test it with errors.Is.
type LoadError struct {
	Table  string
	Column string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("load %s: column %q: %v", e.Table, e.Column, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Table, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Unavailable returns a LoadError for table wrapping ErrSourceUnavailable
// and cause.
func Unavailable(table string, cause error) *LoadError {
	if cause == nil {
		return &LoadError{Table: table, Err: ErrSourceUnavailable}
	}
	return &LoadError{Table: table, Err: fmt.Errorf("%w: %w", ErrSourceUnavailable, cause)}
}

func missingColumn(table, column string) *LoadError {
	return &LoadError{Table: table, Column: column, Err: ErrSchemaMismatch}
}
