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
	"errors"
	"fmt"
	"maps"
	"slices"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

const metadataTable = "retailmetrics_metadata"

// Metadata keys.
const (
	MetaSignature  = "signature"
	MetaVersion    = "version"
	MetaImportedAt = "imported_at"
	MetaSource     = "source"
)

// ErrNoMetadata is returned when a metadata key has not been written.
var ErrNoMetadata = errors.New("metadata not found")

const createMetadataTableSQL = `
CREATE TABLE IF NOT EXISTS retailmetrics_metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// SaveMetadata upserts values into the metadata table.
func SaveMetadata(ctx context.Context, q Querier, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	insert := psql.Insert(metadataTable).Columns("key", "value")
	for _, key := range slices.Sorted(maps.Keys(values)) {
		insert = insert.Values(key, values[key])
	}
	query, args, err := insert.
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build metadata upsert: %w", err)
	}

	if _, err := q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}
	return nil
}

// GetMetadataValue retrieves a single metadata value by key.
func GetMetadataValue(ctx context.Context, q Querier, key string) (string, error) {
	query, args, err := psql.Select("value").
		From(metadataTable).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return "", err
	}

	var value string
	err = q.QueryRow(ctx, query, args...).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrNoMetadata, key)
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// GetAllMetadata retrieves all metadata as a map.
func GetAllMetadata(ctx context.Context, q Querier) (map[string]string, error) {
	query, args, err := psql.Select("key", "value").From(metadataTable).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metadata := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		metadata[key] = value
	}

	return metadata, rows.Err()
}

// MetadataExists checks if the metadata table exists.
func MetadataExists(ctx context.Context, q Querier) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT FROM information_schema.tables
            WHERE table_name = $1
        )
    `, metadataTable).Scan(&exists)
	return exists, err
}
