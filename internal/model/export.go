package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrdersExport is the input for the period workbook: one row per order in
// the requested range, amounts taken from the persisted pricing results.
type OrdersExport struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Rows        []ExportRow
}

type ExportRow struct {
	OrderID     uuid.UUID
	Number      string
	ClientName  string
	Status      OrderStatus
	StartDT     time.Time
	EndDT       *time.Time
	Prepayment  decimal.Decimal
	TotalAmount decimal.Decimal
}

// InvoiceDocument is everything the invoice renderer needs. The snapshot is
// the authoritative pricing record; the renderer prints its figures as-is.
type InvoiceDocument struct {
	Order    Order
	Client   *Client
	Snapshot PriceSnapshot
}
