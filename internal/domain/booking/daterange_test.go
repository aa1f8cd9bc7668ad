package booking

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewDateRangeRejectsBadOrder(t *testing.T) {
	if _, err := NewDateRange(date(2024, 3, 5), date(2024, 3, 1)); err != ErrInvalidRange {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	if _, err := NewDateRange(date(2024, 3, 5), date(2024, 3, 5)); err != ErrInvalidRange {
		t.Fatalf("equal check-in and check-out must be rejected, got %v", err)
	}
	if _, err := NewDateRange(time.Time{}, date(2024, 3, 5)); err != ErrInvalidRange {
		t.Fatalf("zero check-in must be rejected, got %v", err)
	}
}

func TestOverlapsHalfOpen(t *testing.T) {
	base, err := NewDateRange(date(2024, 3, 1), date(2024, 3, 5))
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name     string
		in, out  time.Time
		overlaps bool
	}{
		{"inside", date(2024, 3, 2), date(2024, 3, 4), true},
		{"straddles end", date(2024, 3, 3), date(2024, 3, 7), true},
		{"straddles start", date(2024, 2, 27), date(2024, 3, 2), true},
		{"covers", date(2024, 2, 27), date(2024, 3, 9), true},
		{"touches at checkout", date(2024, 3, 5), date(2024, 3, 8), false},
		{"touches at checkin", date(2024, 2, 25), date(2024, 3, 1), false},
		{"disjoint after", date(2024, 3, 10), date(2024, 3, 12), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			other, err := NewDateRange(tc.in, tc.out)
			if err != nil {
				t.Fatal(err)
			}
			if got := base.Overlaps(other); got != tc.overlaps {
				t.Fatalf("Overlaps(%s) = %v, want %v", tc.name, got, tc.overlaps)
			}
			if got := other.Overlaps(base); got != tc.overlaps {
				t.Fatalf("Overlaps is not symmetric for %s", tc.name)
			}
		})
	}
}

func TestNights(t *testing.T) {
	dr, err := NewDateRange(date(2024, 3, 1), date(2024, 3, 5))
	if err != nil {
		t.Fatal(err)
	}
	if dr.Nights() != 4 {
		t.Fatalf("Nights() = %d, want 4", dr.Nights())
	}
}
