package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestBillableHours(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	t.Run("plain span", func(t *testing.T) {
		got := billableHours(start, start.Add(3*time.Hour+15*time.Minute))
		if !got.Equal(decimal.RequireFromString("3.25")) {
			t.Fatalf("expected 3.25, got %s", got)
		}
	})

	t.Run("end before start clamps to zero", func(t *testing.T) {
		got := billableHours(start, start.Add(-2*time.Hour))
		if !got.IsZero() {
			t.Fatalf("expected 0, got %s", got)
		}
	})
}

func TestRoundHalfHour(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"3.25", "3.5"}, // tie rounds up, never down
		{"3.2", "3"},
		{"3.3", "3.5"},
		{"3.74", "3.5"},
		{"3.75", "4"},
		{"0.25", "0.5"},
		{"0", "0"},
		{"8", "8"},
	}
	for _, tc := range cases {
		got := roundHalfHour(decimal.RequireFromString(tc.in))
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("roundHalfHour(%s) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestSplitShifts(t *testing.T) {
	day := func(d, h, m int) time.Time {
		return time.Date(2025, 6, d, h, m, 0, 0, time.UTC)
	}

	t.Run("short single day carries all hours", func(t *testing.T) {
		shifts, rem := SplitShifts(day(1, 9, 0), day(1, 14, 15))
		if shifts != 0 {
			t.Fatalf("expected 0 shifts, got %d", shifts)
		}
		if !rem.Equal(decimal.RequireFromString("5.5")) {
			t.Fatalf("expected 5.5 remainder, got %s", rem)
		}
	})

	t.Run("long single day consumes one shift", func(t *testing.T) {
		shifts, rem := SplitShifts(day(1, 8, 0), day(1, 19, 0))
		if shifts != 1 {
			t.Fatalf("expected 1 shift, got %d", shifts)
		}
		if !rem.Equal(decimal.NewFromInt(3)) {
			t.Fatalf("expected 3 remainder, got %s", rem)
		}
	})

	t.Run("multi day decomposes per calendar day", func(t *testing.T) {
		// Day 1: 9:00-24:00 = 15h -> 1 shift + 7h.
		// Day 2: full 24h -> 1 shift + 16h.
		// Day 3: 0:00-6:00 = 6h -> carried whole.
		shifts, rem := SplitShifts(day(1, 9, 0), day(3, 6, 0))
		if shifts != 2 {
			t.Fatalf("expected 2 shifts, got %d", shifts)
		}
		if !rem.Equal(decimal.NewFromInt(29)) {
			t.Fatalf("expected 29 remainder, got %s", rem)
		}
	})

	t.Run("inverted span yields nothing", func(t *testing.T) {
		shifts, rem := SplitShifts(day(2, 9, 0), day(1, 9, 0))
		if shifts != 0 || !rem.IsZero() {
			t.Fatalf("expected zero result, got %d shifts, %s hours", shifts, rem)
		}
	})
}
