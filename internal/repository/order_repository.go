package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/ringo-orders/internal/model"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

type orderRow struct {
	ID               uuid.UUID
	Number           string
	ClientID         *uuid.UUID
	Address          string
	StartDT          time.Time
	EndDT            *time.Time
	Description      string
	Status           string
	PrepaymentAmount decimal.Decimal
	TotalAmount      decimal.Decimal
	PriceSnapshot    []byte
	Meta             []byte
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type itemRow struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	ItemType     string
	NameSnapshot string
	Quantity     decimal.Decimal
	Unit         string
	UnitPrice    decimal.Decimal
	TaxRate      decimal.Decimal
	Discount     decimal.Decimal
	Metadata     []byte
	Position     int
	CreatedAt    time.Time
}

func (r *OrderRepository) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var row orderRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			id,
			number,
			client_id,
			address,
			start_dt,
			end_dt,
			description,
			status,
			prepayment_amount,
			total_amount,
			price_snapshot,
			meta,
			created_at,
			updated_at
		FROM orders
		WHERE id = ?
	`, id).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return rowToOrder(row)
}

func (r *OrderRepository) Items(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	var rows []itemRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			id,
			order_id,
			item_type,
			name_snapshot,
			quantity,
			unit,
			unit_price,
			tax_rate,
			discount,
			metadata,
			position,
			created_at
		FROM order_items
		WHERE order_id = ?
		ORDER BY position ASC, created_at ASC
	`, orderID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]model.OrderItem, 0, len(rows))
	for _, row := range rows {
		item, err := rowToItem(row)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *OrderRepository) Create(ctx context.Context, order *model.Order, items []model.OrderItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		snapshot, meta, err := marshalOrderJSON(order)
		if err != nil {
			return err
		}
		err = tx.Exec(`
			INSERT INTO orders (
				id, number, client_id, address, start_dt, end_dt, description,
				status, prepayment_amount, total_amount, price_snapshot, meta
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?::jsonb, ?::jsonb)
		`,
			order.ID,
			order.Number,
			order.ClientID,
			order.Address,
			order.StartDT,
			order.EndDT,
			order.Description,
			string(order.Status),
			order.PrepaymentAmount,
			order.TotalAmount,
			snapshot,
			meta,
		).Error
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		return insertItems(tx, order.ID, items)
	})
}

// Save persists a recalculated order aggregate: the order's mutable fields
// and a full replacement of its items, atomically. Callers run at most one
// recalculation per order at a time; the surrounding transaction is the
// serialization boundary.
func (r *OrderRepository) Save(ctx context.Context, order *model.Order, items []model.OrderItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		snapshot, meta, err := marshalOrderJSON(order)
		if err != nil {
			return err
		}
		err = tx.Exec(`
			UPDATE orders SET
				client_id = ?,
				address = ?,
				start_dt = ?,
				end_dt = ?,
				description = ?,
				status = ?,
				prepayment_amount = ?,
				total_amount = ?,
				price_snapshot = ?::jsonb,
				meta = ?::jsonb,
				updated_at = NOW()
			WHERE id = ?
		`,
			order.ClientID,
			order.Address,
			order.StartDT,
			order.EndDT,
			order.Description,
			string(order.Status),
			order.PrepaymentAmount,
			order.TotalAmount,
			snapshot,
			meta,
			order.ID,
		).Error
		if err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		if err := tx.Exec(`DELETE FROM order_items WHERE order_id = ?`, order.ID).Error; err != nil {
			return fmt.Errorf("delete order items: %w", err)
		}
		return insertItems(tx, order.ID, items)
	})
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE orders SET status = ?, updated_at = NOW() WHERE id = ?
	`, string(status), id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *OrderRepository) ListForExport(ctx context.Context, start, end time.Time) ([]model.ExportRow, error) {
	var rows []struct {
		OrderID     uuid.UUID
		Number      string
		ClientName  string
		Status      string
		StartDT     time.Time
		EndDT       *time.Time
		Prepayment  decimal.Decimal
		TotalAmount decimal.Decimal
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			o.id AS order_id,
			o.number,
			COALESCE(c.name, '') AS client_name,
			o.status,
			o.start_dt,
			o.end_dt,
			o.prepayment_amount AS prepayment,
			o.total_amount
		FROM orders o
		LEFT JOIN clients c ON c.id = o.client_id
		WHERE o.start_dt >= ?
			AND o.start_dt < ?
			AND o.status <> 'DELETED'
		ORDER BY o.start_dt ASC, o.number ASC
	`, start, end).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]model.ExportRow, 0, len(rows))
	for _, row := range rows {
		result = append(result, model.ExportRow{
			OrderID:     row.OrderID,
			Number:      row.Number,
			ClientName:  row.ClientName,
			Status:      model.OrderStatus(row.Status),
			StartDT:     row.StartDT,
			EndDT:       row.EndDT,
			Prepayment:  row.Prepayment,
			TotalAmount: row.TotalAmount,
		})
	}
	return result, nil
}

func insertItems(tx *gorm.DB, orderID uuid.UUID, items []model.OrderItem) error {
	for i, item := range items {
		metadata, err := json.Marshal(item.Metadata)
		if err != nil {
			return fmt.Errorf("marshal item metadata: %w", err)
		}
		id := item.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		err = tx.Exec(`
			INSERT INTO order_items (
				id, order_id, item_type, name_snapshot, quantity, unit,
				unit_price, tax_rate, discount, metadata, position
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?::jsonb, ?)
		`,
			id,
			orderID,
			string(item.ItemType),
			item.NameSnapshot,
			item.Quantity,
			item.Unit,
			item.UnitPrice,
			item.TaxRate,
			item.Discount,
			metadata,
			i,
		).Error
		if err != nil {
			return fmt.Errorf("insert order item %d: %w", i, err)
		}
	}
	return nil
}

func marshalOrderJSON(order *model.Order) (snapshot, meta []byte, err error) {
	if order.PriceSnapshot != nil {
		snapshot, err = json.Marshal(order.PriceSnapshot)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal price snapshot: %w", err)
		}
	} else {
		snapshot = []byte("{}")
	}
	meta, err = json.Marshal(order.Meta)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal order meta: %w", err)
	}
	return snapshot, meta, nil
}

func rowToOrder(row orderRow) (*model.Order, error) {
	order := &model.Order{
		ID:               row.ID,
		Number:           row.Number,
		ClientID:         row.ClientID,
		Address:          row.Address,
		StartDT:          row.StartDT,
		EndDT:            row.EndDT,
		Description:      row.Description,
		Status:           model.OrderStatus(row.Status),
		PrepaymentAmount: row.PrepaymentAmount,
		TotalAmount:      row.TotalAmount,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
	if len(row.Meta) > 0 {
		if err := json.Unmarshal(row.Meta, &order.Meta); err != nil {
			return nil, fmt.Errorf("unmarshal order meta: %w", err)
		}
	}
	if len(row.PriceSnapshot) > 0 && string(row.PriceSnapshot) != "{}" {
		var snapshot model.PriceSnapshot
		if err := json.Unmarshal(row.PriceSnapshot, &snapshot); err != nil {
			return nil, fmt.Errorf("unmarshal price snapshot: %w", err)
		}
		order.PriceSnapshot = &snapshot
	}
	return order, nil
}

func rowToItem(row itemRow) (model.OrderItem, error) {
	item := model.OrderItem{
		ID:           row.ID,
		OrderID:      row.OrderID,
		ItemType:     model.ItemType(row.ItemType),
		NameSnapshot: row.NameSnapshot,
		Quantity:     row.Quantity,
		Unit:         row.Unit,
		UnitPrice:    row.UnitPrice,
		TaxRate:      row.TaxRate,
		Discount:     row.Discount,
		Position:     row.Position,
		CreatedAt:    row.CreatedAt,
	}
	if len(row.Metadata) > 0 {
		if err := json.Unmarshal(row.Metadata, &item.Metadata); err != nil {
			return model.OrderItem{}, fmt.Errorf("unmarshal item metadata: %w", err)
		}
	}
	return item, nil
}
