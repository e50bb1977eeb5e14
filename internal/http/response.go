package http

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nurpe/ringo-orders/internal/model"
)

// jsonDecimal accepts both JSON numbers and quoted numeric strings.
// Malformed values decode to zero instead of failing the whole request body.
type jsonDecimal struct {
	decimal.Decimal
}

func (d *jsonDecimal) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		d.Decimal = decimal.Zero
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			d.Decimal = decimal.Zero
			return nil
		}
		raw = bytes.TrimSpace([]byte(s))
	}
	parsed, err := decimal.NewFromString(string(raw))
	if err != nil {
		d.Decimal = decimal.Zero
		return nil
	}
	d.Decimal = parsed
	return nil
}

func (d jsonDecimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Decimal.String())
}

type orderResponse struct {
	ID            string                `json:"id"`
	Number        string                `json:"number"`
	ClientID      string                `json:"client_id,omitempty"`
	Address       string                `json:"address,omitempty"`
	Description   string                `json:"description,omitempty"`
	Status        string                `json:"status"`
	StartDT       string                `json:"start_dt"`
	EndDT         string                `json:"end_dt,omitempty"`
	Prepayment    string                `json:"prepayment_amount"`
	TotalAmount   string                `json:"total_amount"`
	Meta          model.OrderMeta       `json:"meta"`
	Items         []itemResponse        `json:"items"`
	PriceSnapshot *model.PriceSnapshot  `json:"price_snapshot,omitempty"`
	CreatedAt     string                `json:"created_at"`
	UpdatedAt     string                `json:"updated_at"`
}

type itemResponse struct {
	ID        string             `json:"id"`
	ItemType  string             `json:"item_type"`
	Name      string             `json:"name"`
	Quantity  string             `json:"quantity"`
	Unit      string             `json:"unit,omitempty"`
	UnitPrice string             `json:"unit_price"`
	TaxRate   string             `json:"tax_rate"`
	Discount  string             `json:"discount"`
	Metadata  model.ItemMetadata `json:"metadata"`
	Position  int                `json:"position"`
}

func toOrderResponse(order *model.Order, items []model.OrderItem) orderResponse {
	resp := orderResponse{
		ID:            order.ID.String(),
		Number:        order.Number,
		Address:       order.Address,
		Description:   order.Description,
		Status:        string(order.Status),
		StartDT:       order.StartDT.Format(time.RFC3339),
		Prepayment:    order.PrepaymentAmount.StringFixed(2),
		TotalAmount:   order.TotalAmount.StringFixed(2),
		Meta:          order.Meta,
		Items:         make([]itemResponse, 0, len(items)),
		PriceSnapshot: order.PriceSnapshot,
		CreatedAt:     order.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     order.UpdatedAt.Format(time.RFC3339),
	}
	if order.ClientID != nil {
		resp.ClientID = order.ClientID.String()
	}
	if order.EndDT != nil {
		resp.EndDT = order.EndDT.Format(time.RFC3339)
	}
	for _, item := range items {
		resp.Items = append(resp.Items, itemResponse{
			ID:        item.ID.String(),
			ItemType:  string(item.ItemType),
			Name:      item.NameSnapshot,
			Quantity:  item.Quantity.String(),
			Unit:      item.Unit,
			UnitPrice: item.UnitPrice.StringFixed(2),
			TaxRate:   item.TaxRate.String(),
			Discount:  item.Discount.String(),
			Metadata:  item.Metadata,
			Position:  item.Position,
		})
	}
	return resp
}
