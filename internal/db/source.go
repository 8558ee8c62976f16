//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/pgEdge/pgedge-retailmetrics/internal/loader"
	"github.com/pgEdge/pgedge-retailmetrics/internal/model"
)

// Source reads retail tables written by Import. Every value is returned as
// text so rows go through the same parsing as CSV files.
type Source struct {
	q    Querier
	name string
}

// NewSource creates a Source. name identifies the database in logs.
func NewSource(q Querier, name string) *Source {
	return &Source{q: q, name: name}
}

// Name returns the source's display name.
func (s *Source) Name() string {
	return "postgres:" + s.name
}

func selectTableSQL(table string) (string, []any, error) {
	cols, ok := tableColumns[table]
	if !ok {
		return "", nil, fmt.Errorf("unknown table: %s", table)
	}

	exprs := make([]string, len(cols))
	for i, c := range cols {
		if strings.HasPrefix(c.sqlType, "DATE") {
			exprs[i] = fmt.Sprintf("COALESCE(to_char(%s, 'YYYY-MM-DD'), '') AS %s", c.name, c.name)
		} else {
			exprs[i] = fmt.Sprintf("COALESCE(%s::text, '') AS %s", c.name, c.name)
		}
	}

	order := []string{cols[0].name}
	if table == model.TableInventory {
		order = append(order, loader.ColLastUpdated)
	}

	return psql.Select(exprs...).
		From(TableName(table)).
		OrderBy(order...).
		ToSql()
}

// ReadTable reads one table.
func (s *Source) ReadTable(ctx context.Context, table string) (*loader.RawTable, error) {
	query, args, err := selectTableSQL(table)
	if err != nil {
		return nil, loader.Unavailable(table, err)
	}

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, loader.Unavailable(table, err)
	}
	defer rows.Close()

	header := ColumnNames(table)
	vals := make([]string, len(header))
	ptrs := make([]any, len(header))
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	t := &loader.RawTable{Name: table, Header: header}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, loader.Unavailable(table, err)
		}
		t.Rows = append(t.Rows, slices.Clone(vals))
	}
	if err := rows.Err(); err != nil {
		return nil, loader.Unavailable(table, err)
	}
	return t, nil
}

// Signature returns the signature recorded by the last Import.
func (s *Source) Signature(ctx context.Context) (loader.Signature, error) {
	sig, err := GetMetadataValue(ctx, s.q, MetaSignature)
	if err != nil {
		return "", loader.Unavailable(metadataTable, err)
	}
	return loader.Signature(sig), nil
}

var _ loader.Source = (*Source)(nil)
