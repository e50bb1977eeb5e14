package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nurpe/ringo-orders/internal/model"
)

// pricedLine is one item after pricing. Base is the pre-discount, pre-tax
// amount; Total already has the discount subtracted and the tax added.
type pricedLine struct {
	Name      string
	Type      model.ItemType
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Base      decimal.Decimal
	Discount  decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
	Notes     string
	Usage     *model.EquipmentUsage
}

// priceItem prices a single line. start/end is the order's working window
// (end already resolved against the clock for open orders). The item itself
// is never modified; negative numeric inputs are clamped to zero before any
// multiplication.
func priceItem(item model.OrderItem, start, end time.Time, policy Policy) pricedLine {
	quantity := clampNonNegative(item.Quantity)
	unitPrice := clampNonNegative(item.UnitPrice)
	taxRate := clampNonNegative(item.TaxRate)
	discount := clampNonNegative(item.Discount)

	line := pricedLine{
		Name:      item.NameSnapshot,
		Type:      item.ItemType,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}

	switch item.ItemType {
	case model.ItemTypeEquipment:
		shifts := clampNonNegative(item.Metadata.Shifts)
		hours := clampNonNegative(item.Metadata.Hours)
		dailyRate := clampNonNegative(item.Metadata.DailyRate)
		hourlyRate := unitPrice

		if shifts.IsPositive() || hours.IsPositive() {
			// Operator-entered usage wins over timestamps. The cost is always
			// shifts*daily + hours*hourly; the shifts+hours sum below is a
			// display quantity and must never feed back into the cost.
			shiftsCost := decimal.Zero
			if dailyRate.IsPositive() {
				shiftsCost = shifts.Mul(dailyRate)
			}
			hoursCost := hours.Mul(hourlyRate)
			line.Quantity = shifts.Add(hours)
			line.Notes = usageNotes(shifts, hours)
			line.Usage = &model.EquipmentUsage{
				Shifts:     shifts.IntPart(),
				Hours:      hours.String(),
				ShiftsCost: money(shiftsCost),
				HoursCost:  money(hoursCost),
			}
			return withTotals(line, shiftsCost.Add(hoursCost), discount, taxRate)
		}

		duration := roundHalfHour(billableHours(start, end))
		threshold := decimal.NewFromInt(int64(policy.DailyThresholdHours))
		if duration.GreaterThanOrEqual(threshold) && dailyRate.IsPositive() {
			days := duration.Div(hoursPerDay).Ceil()
			line.UnitPrice = dailyRate
			line.Quantity = days
			line.Notes = fmt.Sprintf("Daily rate (%s day(s))", days)
		} else {
			line.Quantity = duration
			line.Notes = fmt.Sprintf("Hourly rate (%s h)", duration)
		}

	case model.ItemTypeMaterial:
		line.Notes = "Materials"

	case model.ItemTypeService:
		if item.Metadata.BillingMode == model.BillingModePerHour {
			line.Quantity = roundHalfHour(billableHours(start, end))
			line.Notes = "Service per hour"
		} else {
			line.Notes = "Fixed service"
		}

	default:
		line.Notes = item.Metadata.Note
		if line.Notes == "" {
			line.Notes = humanizeItemType(item.ItemType)
		}
	}

	line.Quantity = clampNonNegative(line.Quantity)
	return withTotals(line, line.UnitPrice.Mul(line.Quantity), discount, taxRate)
}

// withTotals applies the common tail: discount on the base, then tax on the
// discounted amount, rounded to cents per line. The per-line rounding point
// is deliberate; aggregate-then-round would drift from historical totals.
func withTotals(line pricedLine, base, discountPct, taxPct decimal.Decimal) pricedLine {
	line.Base = base
	if discountPct.IsPositive() {
		line.Discount = base.Mul(discountPct).Div(hundred)
	}
	taxable := base.Sub(line.Discount)
	line.Tax = taxable.Mul(taxPct).Div(hundred).Round(2)
	line.Total = taxable.Add(line.Tax)
	return line
}

func (l pricedLine) snapshot() model.SnapshotLine {
	return model.SnapshotLine{
		Name:      l.Name,
		Type:      l.Type,
		Quantity:  l.Quantity.String(),
		UnitPrice: money(l.UnitPrice),
		TaxAmount: money(l.Tax),
		Discount:  money(l.Discount),
		LineTotal: money(l.Total),
		Notes:     l.Notes,
		Usage:     l.Usage,
	}
}

func usageNotes(shifts, hours decimal.Decimal) string {
	parts := make([]string, 0, 2)
	if shifts.IsPositive() {
		parts = append(parts, fmt.Sprintf("%d shift(s)", shifts.IntPart()))
	}
	if hours.IsPositive() {
		parts = append(parts, fmt.Sprintf("%s h", hours))
	}
	if len(parts) == 0 {
		return "Equipment"
	}
	return strings.Join(parts, ", ")
}

func humanizeItemType(t model.ItemType) string {
	s := string(t)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
