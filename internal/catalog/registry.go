//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package catalog

import (
	"fmt"
	"slices"
	"sync"
)

var (
	registry = make(map[string]Report)
	mu       sync.RWMutex
)

// Register adds a report to the registry, replacing one of the same name.
func Register(r Report) {
	mu.Lock()
	defer mu.Unlock()
	registry[r.Name] = r
}

// Get retrieves a report by name.
func Get(name string) (Report, error) {
	mu.RLock()
	defer mu.RUnlock()

	r, ok := registry[name]
	if !ok {
		return Report{}, fmt.Errorf("unknown report: %s", name)
	}
	return r, nil
}

// Lookup resolves several names at once. No names selects every report.
func Lookup(names []string) ([]Report, error) {
	if len(names) == 0 {
		return All(), nil
	}
	out := make([]Report, 0, len(names))
	for _, name := range names {
		r, err := Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// List returns all registered report names in alphabetical order.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// All returns all registered reports ordered by name.
func All() []Report {
	names := List()

	mu.RLock()
	defer mu.RUnlock()

	out := make([]Report, 0, len(names))
	for _, name := range names {
		out = append(out, registry[name])
	}
	return out
}
