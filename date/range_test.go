package date

import (
	"testing"
	"time"
)

func TestRange_Contains(t *testing.T) {
	r := Range{From: New(2025, time.January, 1), To: New(2025, time.June, 30)}
	open := Range{From: New(2025, time.January, 1)}

	testCases := []struct {
		name string
		r    Range
		on   Date
		want bool
	}{
		{"lower bound", r, New(2025, time.January, 1), true},
		{"upper bound", r, New(2025, time.June, 30), true},
		{"day after", r, New(2025, time.July, 1), false},
		{"day before", r, New(2024, time.December, 31), false},
		{"open far future", open, New(2099, time.January, 1), true},
		{"open before start", open, New(2024, time.December, 31), false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.r.Contains(tc.on); got != tc.want {
				t.Errorf("%v.Contains(%v) = %v, want %v", tc.r, tc.on, got, tc.want)
			}
		})
	}
}

func TestRange_Valid(t *testing.T) {
	if (Range{From: New(2025, time.May, 1), To: New(2025, time.April, 1)}).Valid() {
		t.Error("inverted range reported valid")
	}
	if !(Range{From: New(2025, time.May, 1)}).Valid() {
		t.Error("open range reported invalid")
	}
}
