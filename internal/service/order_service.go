package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/ringo-orders/internal/model"
	"github.com/nurpe/ringo-orders/internal/pricing"
)

type OrderRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Order, error)
	Items(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error)
	Create(ctx context.Context, order *model.Order, items []model.OrderItem) error
	Save(ctx context.Context, order *model.Order, items []model.OrderItem) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error
	ListForExport(ctx context.Context, start, end time.Time) ([]model.ExportRow, error)
}

type ClientStore interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Client, error)
}

type InvoiceGenerator interface {
	Generate(doc model.InvoiceDocument) ([]byte, error)
}

type ExportGenerator interface {
	Generate(export model.OrdersExport) ([]byte, error)
}

type OrderService struct {
	orders  OrderRepository
	clients ClientStore
	engine  *pricing.Engine
	invoice InvoiceGenerator
	export  ExportGenerator
}

func NewOrderService(
	orders OrderRepository,
	clients ClientStore,
	engine *pricing.Engine,
	invoice InvoiceGenerator,
	export ExportGenerator,
) *OrderService {
	return &OrderService{
		orders:  orders,
		clients: clients,
		engine:  engine,
		invoice: invoice,
		export:  export,
	}
}

type ItemInput struct {
	ItemType  model.ItemType
	Name      string
	Quantity  decimal.Decimal
	Unit      string
	UnitPrice decimal.Decimal
	TaxRate   decimal.Decimal
	Discount  decimal.Decimal
	Metadata  model.ItemMetadata
}

type CreateOrderInput struct {
	Principal   model.Principal
	Number      string
	ClientID    *uuid.UUID
	Address     string
	Description string
	StartDT     time.Time
	EndDT       *time.Time
	Prepayment  decimal.Decimal
	Meta        model.OrderMeta
	Items       []ItemInput
}

type UpdateItemsInput struct {
	Principal  model.Principal
	OrderID    uuid.UUID
	EndDT      *time.Time
	Prepayment *decimal.Decimal
	Items      []ItemInput
}

type CompleteOrderInput struct {
	Principal model.Principal
	OrderID   uuid.UUID
	EndDT     time.Time
	Items     []ItemInput
}

type PreviewInput struct {
	Principal  model.Principal
	StartDT    time.Time
	EndDT      *time.Time
	Prepayment decimal.Decimal
	Meta       model.OrderMeta
	Items      []ItemInput
}

type ExportInput struct {
	Principal   model.Principal
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// FileResult is a generated document ready to be written to the response.
type FileResult struct {
	FileName string
	Content  []byte
}

// Create registers a new order and runs the initial pricing pass.
func (s *OrderService) Create(ctx context.Context, input CreateOrderInput) (*model.Order, []model.OrderItem, error) {
	if !input.Principal.CanManageOrders() {
		return nil, nil, ErrPermissionDenied
	}
	if input.StartDT.IsZero() {
		return nil, nil, fmt.Errorf("%w: start_dt is required", ErrInvalidInput)
	}

	order := &model.Order{
		ID:               uuid.New(),
		Number:           input.Number,
		ClientID:         input.ClientID,
		Address:          input.Address,
		Description:      input.Description,
		StartDT:          input.StartDT,
		EndDT:            input.EndDT,
		Status:           model.OrderStatusCreated,
		PrepaymentAmount: input.Prepayment,
		Meta:             input.Meta,
	}
	if order.Number == "" {
		order.Number = newOrderNumber(order.ID)
	}

	items := toModelItems(order.ID, input.Items)
	if err := s.reprice(order, items); err != nil {
		return nil, nil, err
	}
	if err := s.orders.Create(ctx, order, items); err != nil {
		return nil, nil, err
	}
	return order, items, nil
}

// Get returns the order aggregate.
func (s *OrderService) Get(ctx context.Context, id uuid.UUID, _ model.Principal) (*model.Order, []model.OrderItem, error) {
	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.orders.Items(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return order, items, nil
}

// UpdateItems is the order-edit workflow: replace the item list (and
// optionally the end timestamp and prepayment), reprice, persist. The whole
// snapshot is regenerated; there is no incremental path.
func (s *OrderService) UpdateItems(ctx context.Context, input UpdateItemsInput) (*model.Order, []model.OrderItem, error) {
	if !input.Principal.CanManageOrders() {
		return nil, nil, ErrPermissionDenied
	}
	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, nil, err
	}
	if !orderEditable(order.Status) {
		return nil, nil, fmt.Errorf("%w: order in status %s cannot be edited", ErrInvalidInput, order.Status)
	}

	if input.EndDT != nil {
		order.EndDT = input.EndDT
	}
	if input.Prepayment != nil {
		order.PrepaymentAmount = *input.Prepayment
	}

	items := toModelItems(order.ID, input.Items)
	if err := s.reprice(order, items); err != nil {
		return nil, nil, err
	}
	if err := s.orders.Save(ctx, order, items); err != nil {
		return nil, nil, err
	}
	return order, items, nil
}

// Complete is the order-completion workflow: the order must be in progress,
// gets its final item list and end timestamp, and is priced one last time
// before transitioning to COMPLETED.
func (s *OrderService) Complete(ctx context.Context, input CompleteOrderInput) (*model.Order, []model.OrderItem, error) {
	if !input.Principal.CanCompleteOrders() {
		return nil, nil, ErrPermissionDenied
	}
	if input.EndDT.IsZero() {
		return nil, nil, fmt.Errorf("%w: end_dt is required", ErrInvalidInput)
	}
	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, nil, err
	}
	if order.Status != model.OrderStatusInProgress {
		return nil, nil, fmt.Errorf("%w: order must be IN_PROGRESS to complete, current status is %s", ErrInvalidInput, order.Status)
	}

	end := input.EndDT
	order.EndDT = &end
	order.Status = model.OrderStatusCompleted

	items := toModelItems(order.ID, input.Items)
	if err := s.reprice(order, items); err != nil {
		return nil, nil, err
	}
	if err := s.orders.Save(ctx, order, items); err != nil {
		return nil, nil, err
	}
	return order, items, nil
}

// ChangeStatus moves an order along the lifecycle. Completion goes through
// Complete, never through here.
func (s *OrderService) ChangeStatus(ctx context.Context, id uuid.UUID, to model.OrderStatus, principal model.Principal) error {
	if !principal.CanManageOrders() {
		return ErrPermissionDenied
	}
	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return err
	}
	if err := validateTransition(order.Status, to); err != nil {
		return err
	}
	return s.orders.UpdateStatus(ctx, id, to)
}

// Preview prices a hypothetical order without touching storage. Any
// authenticated caller may use it.
func (s *OrderService) Preview(ctx context.Context, input PreviewInput) (*model.PriceSnapshot, error) {
	if input.StartDT.IsZero() {
		return nil, fmt.Errorf("%w: start_dt is required", ErrInvalidInput)
	}
	order := &model.Order{
		StartDT:          input.StartDT,
		EndDT:            input.EndDT,
		PrepaymentAmount: input.Prepayment,
		Meta:             input.Meta,
	}
	result, err := s.engine.Calculate(order, toModelItems(uuid.Nil, input.Items))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return &result.Snapshot, nil
}

// Invoice renders the PDF from the persisted snapshot. The snapshot is
// authoritative: no figure is recomputed here.
func (s *OrderService) Invoice(ctx context.Context, id uuid.UUID, principal model.Principal) (*FileResult, error) {
	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.PriceSnapshot == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, order.Number)
	}

	doc := model.InvoiceDocument{Order: *order, Snapshot: *order.PriceSnapshot}
	if order.ClientID != nil {
		client, err := s.clients.Get(ctx, *order.ClientID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		doc.Client = client
	}

	content, err := s.invoice.Generate(doc)
	if err != nil {
		return nil, err
	}
	return &FileResult{
		FileName: fmt.Sprintf("invoice-%s.pdf", sanitizeFileName(order.Number)),
		Content:  content,
	}, nil
}

// ExportOrders builds the period workbook from persisted totals.
func (s *OrderService) ExportOrders(ctx context.Context, input ExportInput) (*FileResult, error) {
	if !input.Principal.CanManageOrders() {
		return nil, ErrPermissionDenied
	}
	if input.PeriodStart.IsZero() || input.PeriodEnd.IsZero() {
		return nil, fmt.Errorf("%w: period dates are required", ErrInvalidInput)
	}

	periodStart := dateOnly(input.PeriodStart)
	periodEnd := dateOnly(input.PeriodEnd)
	if periodStart.After(periodEnd) {
		return nil, fmt.Errorf("%w: period_start must be before or equal to period_end", ErrInvalidInput)
	}
	endExclusive := periodEnd.Add(24 * time.Hour)

	rows, err := s.orders.ListForExport(ctx, periodStart, endExclusive)
	if err != nil {
		return nil, err
	}

	content, err := s.export.Generate(model.OrdersExport{
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Rows:        rows,
	})
	if err != nil {
		return nil, err
	}

	period := fmt.Sprintf("%s-%s", periodStart.Format("20060102"), periodEnd.Format("20060102"))
	return &FileResult{
		FileName: fmt.Sprintf("orders-%s.xlsx", period),
		Content:  content,
	}, nil
}

func (s *OrderService) loadOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) reprice(order *model.Order, items []model.OrderItem) error {
	result, err := s.engine.Calculate(order, items)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	order.TotalAmount = result.Total
	snapshot := result.Snapshot
	order.PriceSnapshot = &snapshot
	return nil
}

var allowedTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusDraft:      {model.OrderStatusCreated, model.OrderStatusCancelled},
	model.OrderStatusCreated:    {model.OrderStatusApproved, model.OrderStatusCancelled},
	model.OrderStatusApproved:   {model.OrderStatusInProgress, model.OrderStatusCancelled},
	model.OrderStatusInProgress: {model.OrderStatusCancelled},
	model.OrderStatusCancelled:  {model.OrderStatusDeleted},
}

func validateTransition(from, to model.OrderStatus) error {
	for _, allowed := range allowedTransitions[from] {
		if to == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: transition %s -> %s is not allowed", ErrInvalidInput, from, to)
}

func orderEditable(status model.OrderStatus) bool {
	switch status {
	case model.OrderStatusCompleted, model.OrderStatusCancelled, model.OrderStatusDeleted:
		return false
	}
	return true
}

func toModelItems(orderID uuid.UUID, inputs []ItemInput) []model.OrderItem {
	items := make([]model.OrderItem, 0, len(inputs))
	for i, in := range inputs {
		items = append(items, model.OrderItem{
			ID:           uuid.New(),
			OrderID:      orderID,
			ItemType:     in.ItemType,
			NameSnapshot: in.Name,
			Quantity:     in.Quantity,
			Unit:         in.Unit,
			UnitPrice:    in.UnitPrice,
			TaxRate:      in.TaxRate,
			Discount:     in.Discount,
			Metadata:     in.Metadata,
			Position:     i,
		})
	}
	return items
}

func newOrderNumber(id uuid.UUID) string {
	short := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))[:8]
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), short)
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
