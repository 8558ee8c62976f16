//-------------------------------------------------------------------------
//
// pgEdge Retail Metrics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package metrics

// Segment buckets customers by how many distinct months they ordered in.
type Segment string

const (
	SegmentNew    Segment = "New"
	SegmentRepeat Segment = "Repeat"
	SegmentLoyal  Segment = "Loyal"
)

// Segments lists the buckets in display order.
var Segments = []Segment{SegmentNew, SegmentRepeat, SegmentLoyal}

// SegmentFor classifies a customer with the given number of order months:
// 1 is New, 2 to 4 Repeat, 5 or more Loyal. Zero order months has no
// segment.
func SegmentFor(orderMonths int) Segment {
	switch {
	case orderMonths >= 5:
		return SegmentLoyal
	case orderMonths >= 2:
		return SegmentRepeat
	case orderMonths == 1:
		return SegmentNew
	default:
		return ""
	}
}
