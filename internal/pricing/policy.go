package pricing

import "github.com/shopspring/decimal"

// Policy carries the two billing tunables. It is a plain value passed into
// the engine, never process-wide state, so callers and tests can run
// different policies side by side.
type Policy struct {
	// DailyThresholdHours is the rounded duration at which equipment billing
	// switches from the hourly rate to whole days at the daily rate.
	DailyThresholdHours int
	// LatePenaltyPercent is applied to the pre-tax subtotal of orders
	// finished after their planned end.
	LatePenaltyPercent decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{
		DailyThresholdHours: 8,
		LatePenaltyPercent:  decimal.NewFromInt(10),
	}
}
