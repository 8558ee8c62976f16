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
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pgEdge/pgedge-retailmetrics/internal/model"
)

// Signature identifies the state of a source. Two equal signatures mean the
// source has not changed and a reload can be skipped.
type Signature string

// RawTable is a table as read from a source: a header and text cells.
type RawTable struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Source provides the five named retail tables.
type Source interface {
	// Name describes the source for logging.
	Name() string

	// ReadTable reads one table in full.
	ReadTable(ctx context.Context, table string) (*RawTable, error)

	// Signature returns the current change signature of the source.
	Signature(ctx context.Context) (Signature, error)
}

// DirSource reads <table>.csv files from a directory.
type DirSource struct {
	dir string
}

// NewDirSource returns a Source reading CSV files from dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Name returns the directory path.
func (s *DirSource) Name() string {
	return s.dir
}

// Path returns the file backing a table.
func (s *DirSource) Path(table string) string {
	return filepath.Join(s.dir, table+".csv")
}

// ReadTable parses the CSV file for table.
func (s *DirSource) ReadTable(ctx context.Context, table string) (*RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path(table))
	if err != nil {
		return nil, Unavailable(table, err)
	}
	defer f.Close()

	return ReadCSV(table, f)
}

// Signature combines the name, size and modification time of every file.
// A missing file is reported as ErrSourceUnavailable.
func (s *DirSource) Signature(ctx context.Context) (Signature, error) {
	var b strings.Builder
	for _, table := range model.Tables {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		info, err := os.Stat(s.Path(table))
		if err != nil {
			return "", Unavailable(table, err)
		}
		if info.IsDir() {
			return "", Unavailable(table, fmt.Errorf("%s is a directory", info.Name()))
		}
		fmt.Fprintf(&b, "%s:%d:%d;", table, info.Size(), info.ModTime().UnixNano())
	}
	return Signature(b.String()), nil
}

// ReadCSV reads a whole CSV stream whose first record is the header.
// Records may have fewer or more fields than the header.
func ReadCSV(table string, r io.Reader) (*RawTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &RawTable{Name: table}, nil
	}
	if err != nil {
		return nil, Unavailable(table, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, Unavailable(table, err)
	}

	return &RawTable{Name: table, Header: header, Rows: rows}, nil
}
