//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package main is the entry point for pgedge-retailmetrics.
package main

import (
	"fmt"
	"os"

	"github.com/pgEdge/pgedge-retailmetrics/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
