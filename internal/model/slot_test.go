package model

import (
	"testing"
	"time"
)

func at(h, m int) time.Time {
	return time.Date(2025, 3, 10, h, m, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"disjoint before", at(8, 0), at(9, 0), at(10, 0), at(11, 0), false},
		{"disjoint after", at(12, 0), at(13, 0), at(10, 0), at(11, 0), false},
		{"partial overlap", at(8, 0), at(9, 0), at(8, 30), at(9, 30), true},
		{"contained", at(8, 0), at(12, 0), at(9, 0), at(10, 0), true},
		// Inclusive bounds: abutting intervals conflict.
		{"abutting", at(8, 0), at(9, 0), at(9, 0), at(10, 0), true},
		{"identical bounds", at(9, 0), at(10, 0), at(9, 0), at(10, 0), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Overlaps(c.aStart, c.aEnd, c.bStart, c.bEnd); got != c.want {
				t.Errorf("Overlaps = %v, want %v", got, c.want)
			}
			// The predicate is symmetric.
			if got := Overlaps(c.bStart, c.bEnd, c.aStart, c.aEnd); got != c.want {
				t.Errorf("Overlaps (swapped) = %v, want %v", got, c.want)
			}
		})
	}
}
