//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"testing"
	"time"
)

func TestNewFaker(t *testing.T) {
	f := NewFaker()
	if f == nil {
		t.Fatal("NewFaker returned nil")
	}
	if f.faker == nil {
		t.Fatal("faker field is nil")
	}
}

func TestNewFakerWithSeed(t *testing.T) {
	seed := uint64(12345)
	f1 := NewFakerWithSeed(seed)
	f2 := NewFakerWithSeed(seed)

	// Same seed should produce same sequence
	for i := 0; i < 10; i++ {
		v1 := f1.Int(0, 1000)
		v2 := f2.Int(0, 1000)
		if v1 != v2 {
			t.Errorf("Same seed produced different values: %d != %d", v1, v2)
		}
	}
	if f1.Name() != f2.Name() {
		t.Error("Same seed produced different names")
	}
}

func TestFakerStrings(t *testing.T) {
	f := NewFaker()
	for name, fn := range map[string]func() string{
		"Name":        f.Name,
		"City":        f.City,
		"ProductName": f.ProductName,
	} {
		if fn() == "" {
			t.Errorf("%s returned empty string", name)
		}
	}
}

func TestFakerPrice(t *testing.T) {
	f := NewFaker()
	for i := 0; i < 100; i++ {
		p := f.Price(2, 50)
		if p < 2 || p > 50 {
			t.Errorf("Price %f out of range [2, 50]", p)
		}
	}
}

func TestFakerDate(t *testing.T) {
	f := NewFaker()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 100; i++ {
		d := f.Date(start, end)
		if d.Before(start) || d.After(end) {
			t.Errorf("Date %v out of range", d)
		}
	}
}

func TestFakerInt(t *testing.T) {
	f := NewFaker()
	for i := 0; i < 100; i++ {
		v := f.Int(10, 20)
		if v < 10 || v > 20 {
			t.Errorf("Int %d out of range [10, 20]", v)
		}
		v64 := f.Int64(100, 200)
		if v64 < 100 || v64 > 200 {
			t.Errorf("Int64 %d out of range [100, 200]", v64)
		}
	}
}

func TestFakerChance(t *testing.T) {
	f := NewFaker()
	for i := 0; i < 100; i++ {
		if f.Chance(0) {
			t.Fatal("Chance(0) returned true")
		}
		if !f.Chance(1.1) {
			t.Fatal("Chance(1.1) returned false")
		}
	}
}

func TestFakerSkewed(t *testing.T) {
	f := NewFakerWithSeed(7)
	counts := make([]int, 10)
	for i := 0; i < 5000; i++ {
		idx := f.Skewed(10)
		if idx < 0 || idx >= 10 {
			t.Fatalf("Skewed index %d out of range", idx)
		}
		counts[idx]++
	}
	if counts[0] <= counts[9] {
		t.Errorf("Expected low indexes to dominate, got %v", counts)
	}
	if f.Skewed(1) != 0 || f.Skewed(0) != 0 {
		t.Error("Expected 0 for degenerate ranges")
	}
}

func TestChoose(t *testing.T) {
	f := NewFaker()
	items := []string{"a", "b", "c"}
	for i := 0; i < 100; i++ {
		v := Choose(f, items)
		if v != "a" && v != "b" && v != "c" {
			t.Errorf("Choose returned unexpected value: %s", v)
		}
	}
}

func TestChooseEmpty(t *testing.T) {
	f := NewFaker()
	var items []int
	if v := Choose(f, items); v != 0 {
		t.Errorf("Expected zero value for empty slice, got %d", v)
	}
}

func TestChooseWeighted(t *testing.T) {
	f := NewFaker()
	items := []string{"common", "rare"}
	weights := []int{100, 0}
	for i := 0; i < 100; i++ {
		if v := ChooseWeighted(f, items, weights); v != "common" {
			t.Errorf("Expected 'common' with weight 100, got %s", v)
		}
	}
}

func TestChooseWeightedEmpty(t *testing.T) {
	f := NewFaker()
	if v := ChooseWeighted(f, []string{}, []int{}); v != "" {
		t.Errorf("Expected empty string, got %s", v)
	}
}

func TestFakerNullableString(t *testing.T) {
	f := NewFaker()
	if v := f.NullableString("test", 0); v != "test" {
		t.Errorf("Expected 'test' with 0 null probability, got %s", v)
	}
	if v := f.NullableString("test", 1.1); v != "" {
		t.Errorf("Expected empty string with >1 null probability, got %s", v)
	}
}
