//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package testutil provides dataset fixtures and PostgreSQL helpers for
// tests.
package testutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// DefaultTestConnString is used when PGEDGE_TEST_CONN is unset.
	DefaultTestConnString = "postgres://postgres@localhost:5432/postgres"

	// TestDBPrefix is the prefix of every scratch database.
	TestDBPrefix = "retailmetrics_test_"
)

// PostgresAvailable returns the test server connection string, or "" when
// no server answers within five seconds.
func PostgresAvailable() string {
	connStr := os.Getenv("PGEDGE_TEST_CONN")
	if connStr == "" {
		connStr = DefaultTestConnString
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return ""
	}
	defer conn.Close(ctx)
	if err := conn.Ping(ctx); err != nil {
		return ""
	}
	return connStr
}

// SkipIfNoPostgres skips t unless a test server is reachable.
func SkipIfNoPostgres(t *testing.T) string {
	t.Helper()
	connStr := PostgresAvailable()
	if connStr == "" {
		t.Skip("PostgreSQL not available, skipping integration test")
	}
	return connStr
}

// TestDB is a scratch database created for one test.
type TestDB struct {
	Name       string
	ConnString string

	t       *testing.T
	baseURL string
	pools   []*pgxpool.Pool
}

// NewTestDB creates an empty database named after label on the server at
// baseConnStr. It is dropped when t ends, unless t failed.
func NewTestDB(t *testing.T, baseConnStr, label string) *TestDB {
	t.Helper()

	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		t.Fatalf("Failed to generate database name: %v", err)
	}
	tdb := &TestDB{
		Name:    TestDBPrefix + label + "_" + hex.EncodeToString(suffix),
		t:       t,
		baseURL: baseConnStr,
	}

	if err := tdb.admin(fmt.Sprintf("CREATE DATABASE %s", pgx.Identifier{tdb.Name}.Sanitize())); err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	connStr, err := withDatabase(baseConnStr, tdb.Name)
	if err != nil {
		t.Fatalf("Failed to build test connection string: %v", err)
	}
	tdb.ConnString = connStr

	t.Cleanup(tdb.cleanup)
	return tdb
}

// Track closes pool before the database is dropped.
func (tdb *TestDB) Track(pool *pgxpool.Pool) {
	tdb.pools = append(tdb.pools, pool)
}

func (tdb *TestDB) cleanup() {
	for _, p := range tdb.pools {
		p.Close()
	}
	if tdb.t.Failed() {
		tdb.t.Logf("Test failed, keeping database %s", tdb.Name)
		return
	}

	name := pgx.Identifier{tdb.Name}.Sanitize()
	_ = tdb.admin(fmt.Sprintf(
		"SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = '%s' AND pid <> pg_backend_pid()",
		tdb.Name))
	if err := tdb.admin("DROP DATABASE IF EXISTS " + name); err != nil {
		tdb.t.Logf("Warning: failed to drop test database %s: %v", tdb.Name, err)
	}
}

// admin runs sql on the base database.
func (tdb *TestDB) admin(sql string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, tdb.baseURL)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)
	_, err = conn.Exec(ctx, sql)
	return err
}

// withDatabase points a URL-style connection string at another database.
func withDatabase(connStr, name string) (string, error) {
	u, err := url.Parse(connStr)
	if err != nil {
		return "", err
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("expected a postgres:// URL, got %q", connStr)
	}
	u.Path = "/" + name
	return u.String(), nil
}
