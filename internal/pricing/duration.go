package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	two            = decimal.NewFromInt(2)
	hundred        = decimal.NewFromInt(100)
	hoursPerDay    = decimal.NewFromInt(24)
	hoursPerShift  = decimal.NewFromInt(8)
	secondsPerHour = decimal.NewFromInt(3600)
)

// billableHours returns the span between start and end in hours. A span
// that ends before it starts counts as zero, never negative.
func billableHours(start, end time.Time) decimal.Decimal {
	seconds := int64(end.Sub(start) / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	return decimal.NewFromInt(seconds).Div(secondsPerHour)
}

// roundHalfHour rounds to the nearest half hour with ties going up:
// 3.25 becomes 3.5, not 3.
func roundHalfHour(v decimal.Decimal) decimal.Decimal {
	return v.Mul(two).Round(0).Div(two)
}

// SplitShifts decomposes a span into full shifts and remainder hours the
// way operators fill in equipment usage: each calendar day in the span that
// holds at least eight worked hours consumes one shift, everything else is
// carried as hours. The remainder is rounded to the half hour. This is a
// helper for manual entry; the engine itself only reads the shifts/hours an
// operator stored in item metadata.
func SplitShifts(start, end time.Time) (shifts int64, remainder decimal.Decimal) {
	remainder = decimal.Zero
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return 0, remainder
	}

	cur := start
	for cur.Before(end) {
		dayEnd := time.Date(cur.Year(), cur.Month(), cur.Day(), 0, 0, 0, 0, cur.Location()).AddDate(0, 0, 1)
		if dayEnd.After(end) {
			dayEnd = end
		}
		hours := billableHours(cur, dayEnd)
		if hours.GreaterThanOrEqual(hoursPerShift) {
			shifts++
			remainder = remainder.Add(hours.Sub(hoursPerShift))
		} else {
			remainder = remainder.Add(hours)
		}
		cur = dayEnd
	}
	return shifts, roundHalfHour(remainder)
}

func clampNonNegative(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

func money(v decimal.Decimal) string {
	return v.StringFixed(2)
}
