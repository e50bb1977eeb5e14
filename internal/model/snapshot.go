package model

import "time"

// PriceSnapshot is the persisted result of a pricing run. Downstream
// invoicing and reporting read it verbatim and never recompute it; every
// monetary field is a fixed two-decimal string so the record round-trips
// exactly through storage and transport.
type PriceSnapshot struct {
	Positions   []SnapshotLine  `json:"positions"`
	Summary     SnapshotSummary `json:"summary"`
	GeneratedAt time.Time       `json:"generated_at"`
}

type SnapshotLine struct {
	Name      string          `json:"name"`
	Type      ItemType        `json:"type"`
	Quantity  string          `json:"quantity"`
	UnitPrice string          `json:"unit_price"`
	TaxAmount string          `json:"tax_amount"`
	Discount  string          `json:"discount"`
	LineTotal string          `json:"line_total"`
	Notes     string          `json:"notes"`
	Usage     *EquipmentUsage `json:"metadata,omitempty"`
}

// EquipmentUsage breaks an equipment line billed from operator-entered
// shifts and hours into its two cost components.
type EquipmentUsage struct {
	Shifts     int64  `json:"shifts"`
	Hours      string `json:"hours"`
	ShiftsCost string `json:"shifts_cost"`
	HoursCost  string `json:"hours_cost"`
}

type SnapshotSummary struct {
	Subtotal      string `json:"subtotal"`
	TaxTotal      string `json:"tax_total"`
	DiscountTotal string `json:"discount_total"`
	LatePenalty   string `json:"late_penalty"`
	Total         string `json:"total"`
	Prepayment    string `json:"prepayment"`
	Balance       string `json:"balance"`
}
