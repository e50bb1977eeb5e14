package pricing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nurpe/ringo-orders/internal/model"
)

// latePenalty returns the surcharge for late completion, computed once on
// the aggregate pre-tax subtotal. Zero for empty or non-positive subtotals.
func latePenalty(order *model.Order, subtotal decimal.Decimal, policy Policy, now time.Time) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}
	if !isLate(order, now) {
		return decimal.Zero
	}
	return subtotal.Mul(policy.LatePenaltyPercent).Div(hundred).Round(2)
}

// isLate is true when the order was flagged delayed by hand, or when its
// actual end (now, if still open) is strictly after the planned end. A
// planned end that does not parse means not late; a pricing run never fails
// on a bad timestamp string.
func isLate(order *model.Order, now time.Time) bool {
	if order.Meta.IsDelayed {
		return true
	}
	planned := strings.TrimSpace(order.Meta.PlannedEndDT)
	if planned == "" {
		return false
	}
	plannedDT, ok := parseTimestamp(planned)
	if !ok {
		return false
	}
	actual := now
	if order.EndDT != nil {
		actual = *order.EndDT
	}
	return actual.After(plannedDT)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
