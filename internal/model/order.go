package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusDraft      OrderStatus = "DRAFT"
	OrderStatusCreated    OrderStatus = "CREATED"
	OrderStatusApproved   OrderStatus = "APPROVED"
	OrderStatusInProgress OrderStatus = "IN_PROGRESS"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusDeleted    OrderStatus = "DELETED"
)

type Order struct {
	ID               uuid.UUID
	Number           string
	ClientID         *uuid.UUID
	Address          string
	StartDT          time.Time
	EndDT            *time.Time
	Description      string
	Status           OrderStatus
	PrepaymentAmount decimal.Decimal
	TotalAmount      decimal.Decimal
	PriceSnapshot    *PriceSnapshot
	Meta             OrderMeta
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type ItemType string

const (
	ItemTypeEquipment  ItemType = "equipment"
	ItemTypeMaterial   ItemType = "material"
	ItemTypeService    ItemType = "service"
	ItemTypeAttachment ItemType = "attachment"
)

type OrderItem struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	ItemType     ItemType
	NameSnapshot string
	Quantity     decimal.Decimal
	Unit         string
	UnitPrice    decimal.Decimal
	TaxRate      decimal.Decimal
	Discount     decimal.Decimal
	Metadata     ItemMetadata
	Position     int
	CreatedAt    time.Time
}
