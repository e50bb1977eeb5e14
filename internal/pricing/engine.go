package pricing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nurpe/ringo-orders/internal/model"
)

// ErrMissingStart is the one precondition the engine enforces: without a
// start timestamp no duration can be computed. Everything else malformed is
// absorbed into a zeroed contribution instead of failing the calculation.
var ErrMissingStart = errors.New("order start timestamp is required")

// Engine prices an order aggregate. It is a pure computation over the
// inputs it receives: no I/O, no shared state, safe to run concurrently for
// different orders. Callers own persistence of the result.
type Engine struct {
	policy Policy
	now    func() time.Time
}

func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy, now: time.Now}
}

// Result is what a pricing run produces: the order total and the snapshot
// the caller persists in place of any previous one.
type Result struct {
	Total    decimal.Decimal
	Snapshot model.PriceSnapshot
}

// Calculate prices every item in its stored order, aggregates the
// subtotal/tax/discount breakdown, applies the late-completion penalty and
// nets out the prepayment. The same order and item state always yields the
// same figures; only the snapshot's generation timestamp moves.
func (e *Engine) Calculate(order *model.Order, items []model.OrderItem) (Result, error) {
	if order.StartDT.IsZero() {
		return Result{}, ErrMissingStart
	}

	now := e.now().UTC()
	end := now
	if order.EndDT != nil {
		end = *order.EndDT
	}

	subtotal := decimal.Zero
	taxTotal := decimal.Zero
	discountTotal := decimal.Zero
	positions := make([]model.SnapshotLine, 0, len(items))

	for _, item := range items {
		line := priceItem(item, order.StartDT, end, e.policy)
		subtotal = subtotal.Add(line.Base)
		taxTotal = taxTotal.Add(line.Tax)
		discountTotal = discountTotal.Add(line.Discount)
		positions = append(positions, line.snapshot())
	}

	// The penalty is reported standalone in the summary but still counted
	// inside discount_total; reports depend on that exact arithmetic.
	penalty := latePenalty(order, subtotal, e.policy, now)
	discountTotal = discountTotal.Add(penalty)

	total := subtotal.Add(taxTotal).Sub(discountTotal)
	total = clampNonNegative(total).Round(2)

	prepayment := clampNonNegative(order.PrepaymentAmount)
	balance := clampNonNegative(total.Sub(prepayment))

	return Result{
		Total: total,
		Snapshot: model.PriceSnapshot{
			Positions: positions,
			Summary: model.SnapshotSummary{
				Subtotal:      money(subtotal),
				TaxTotal:      money(taxTotal),
				DiscountTotal: money(discountTotal),
				LatePenalty:   money(penalty),
				Total:         money(total),
				Prepayment:    money(prepayment),
				Balance:       money(balance),
			},
			GeneratedAt: now,
		},
	}, nil
}
