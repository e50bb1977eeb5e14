package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/ringo-orders/internal/model"
	"github.com/nurpe/ringo-orders/internal/pricing"
)

type fakeOrderRepo struct {
	orders map[uuid.UUID]*model.Order
	items  map[uuid.UUID][]model.OrderItem
	rows   []model.ExportRow

	createCalls int
	saveCalls   int
	lastStatus  model.OrderStatus
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[uuid.UUID]*model.Order),
		items:  make(map[uuid.UUID][]model.OrderItem),
	}
}

func (f *fakeOrderRepo) Get(_ context.Context, id uuid.UUID) (*model.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrderRepo) Items(_ context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	return f.items[orderID], nil
}

func (f *fakeOrderRepo) Create(_ context.Context, order *model.Order, items []model.OrderItem) error {
	f.createCalls++
	copied := *order
	f.orders[order.ID] = &copied
	f.items[order.ID] = items
	return nil
}

func (f *fakeOrderRepo) Save(_ context.Context, order *model.Order, items []model.OrderItem) error {
	f.saveCalls++
	copied := *order
	f.orders[order.ID] = &copied
	f.items[order.ID] = items
	return nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.OrderStatus) error {
	order, ok := f.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	order.Status = status
	f.lastStatus = status
	return nil
}

func (f *fakeOrderRepo) ListForExport(_ context.Context, _, _ time.Time) ([]model.ExportRow, error) {
	return f.rows, nil
}

type fakeClientStore struct {
	client *model.Client
}

func (f *fakeClientStore) Get(_ context.Context, _ uuid.UUID) (*model.Client, error) {
	if f.client == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.client, nil
}

type fakeDocGenerator struct {
	content []byte
	err     error
	calls   int
}

func (f *fakeDocGenerator) Generate(_ model.InvoiceDocument) ([]byte, error) {
	f.calls++
	return f.content, f.err
}

type fakeExportGenerator struct {
	content []byte
	last    model.OrdersExport
}

func (f *fakeExportGenerator) Generate(export model.OrdersExport) ([]byte, error) {
	f.last = export
	return f.content, nil
}

func newTestService(repo *fakeOrderRepo) (*OrderService, *fakeDocGenerator, *fakeExportGenerator) {
	invoiceGen := &fakeDocGenerator{content: []byte("%PDF")}
	exportGen := &fakeExportGenerator{content: []byte("PK")}
	svc := NewOrderService(
		repo,
		&fakeClientStore{},
		pricing.NewEngine(pricing.DefaultPolicy()),
		invoiceGen,
		exportGen,
	)
	return svc, invoiceGen, exportGen
}

func managerPrincipal() model.Principal {
	return model.Principal{UserID: uuid.New(), Name: "manager", Role: model.RoleManager}
}

func operatorPrincipal() model.Principal {
	return model.Principal{UserID: uuid.New(), Name: "operator", Role: model.RoleOperator}
}

func viewerPrincipal() model.Principal {
	return model.Principal{UserID: uuid.New(), Name: "viewer", Role: model.RoleViewer}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)

	t.Run("prices and persists", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc, _, _ := newTestService(repo)

		order, items, err := svc.Create(ctx, CreateOrderInput{
			Principal: managerPrincipal(),
			StartDT:   start,
			EndDT:     &end,
			Items: []ItemInput{{
				ItemType:  model.ItemTypeEquipment,
				Name:      "Excavator",
				UnitPrice: decimal.NewFromInt(100),
			}},
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if repo.createCalls != 1 {
			t.Fatalf("createCalls = %d, want 1", repo.createCalls)
		}
		if order.Status != model.OrderStatusCreated {
			t.Errorf("status = %s, want CREATED", order.Status)
		}
		if order.PriceSnapshot == nil {
			t.Fatal("expected snapshot on created order")
		}
		if got := order.TotalAmount.StringFixed(2); got != "400.00" {
			t.Errorf("total = %s, want 400.00", got)
		}
		if len(items) != 1 || items[0].Position != 0 {
			t.Errorf("unexpected items %+v", items)
		}
		if order.Number == "" {
			t.Error("expected generated order number")
		}
	})

	t.Run("viewer denied", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc, _, _ := newTestService(repo)

		_, _, err := svc.Create(ctx, CreateOrderInput{Principal: viewerPrincipal(), StartDT: start})
		if !errors.Is(err, ErrPermissionDenied) {
			t.Fatalf("err = %v, want ErrPermissionDenied", err)
		}
		if repo.createCalls != 0 {
			t.Error("repository must not be touched on denial")
		}
	})

	t.Run("missing start rejected", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc, _, _ := newTestService(repo)

		_, _, err := svc.Create(ctx, CreateOrderInput{Principal: managerPrincipal()})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("err = %v, want ErrInvalidInput", err)
		}
	})
}

func TestUpdateItems(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	seed := func(repo *fakeOrderRepo, status model.OrderStatus) uuid.UUID {
		id := uuid.New()
		repo.orders[id] = &model.Order{ID: id, Number: "ORD-1", StartDT: start, EndDT: &end, Status: status}
		return id
	}

	t.Run("reprices and saves", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc, _, _ := newTestService(repo)
		id := seed(repo, model.OrderStatusCreated)

		prepay := decimal.NewFromInt(50)
		order, items, err := svc.UpdateItems(ctx, UpdateItemsInput{
			Principal:  managerPrincipal(),
			OrderID:    id,
			Prepayment: &prepay,
			Items: []ItemInput{{
				ItemType:  model.ItemTypeMaterial,
				Name:      "Sand",
				Quantity:  decimal.NewFromInt(3),
				UnitPrice: decimal.NewFromInt(40),
			}},
		})
		if err != nil {
			t.Fatalf("UpdateItems: %v", err)
		}
		if repo.saveCalls != 1 {
			t.Fatalf("saveCalls = %d, want 1", repo.saveCalls)
		}
		if got := order.TotalAmount.StringFixed(2); got != "120.00" {
			t.Errorf("total = %s, want 120.00", got)
		}
		if got := order.PriceSnapshot.Summary.Balance; got != "70.00" {
			t.Errorf("balance = %s, want 70.00", got)
		}
		if len(items) != 1 {
			t.Fatalf("items = %d, want 1", len(items))
		}
	})

	t.Run("completed order not editable", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc, _, _ := newTestService(repo)
		id := seed(repo, model.OrderStatusCompleted)

		_, _, err := svc.UpdateItems(ctx, UpdateItemsInput{Principal: managerPrincipal(), OrderID: id})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("err = %v, want ErrInvalidInput", err)
		}
		if repo.saveCalls != 0 {
			t.Error("completed order must not be saved")
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc, _, _ := newTestService(repo)

		_, _, err := svc.UpdateItems(ctx, UpdateItemsInput{Principal: managerPrincipal(), OrderID: uuid.New()})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestComplete(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("operator completes in-progress order", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc, _, _ := newTestService(repo)
		id := uuid.New()
		repo.orders[id] = &model.Order{ID: id, Number: "ORD-2", StartDT: start, Status: model.OrderStatusInProgress}

		order, _, err := svc.Complete(ctx, CompleteOrderInput{
			Principal: operatorPrincipal(),
			OrderID:   id,
			EndDT:     start.Add(3 * time.Hour),
			Items: []ItemInput{{
				ItemType:  model.ItemTypeService,
				Name:      "Delivery",
				Quantity:  decimal.NewFromInt(1),
				UnitPrice: decimal.NewFromInt(75),
			}},
		})
		if err != nil {
			t.Fatalf("Complete: %v", err)
		}
		if order.Status != model.OrderStatusCompleted {
			t.Errorf("status = %s, want COMPLETED", order.Status)
		}
		if order.EndDT == nil || !order.EndDT.Equal(start.Add(3*time.Hour)) {
			t.Errorf("end_dt = %v", order.EndDT)
		}
		if got := order.TotalAmount.StringFixed(2); got != "75.00" {
			t.Errorf("total = %s, want 75.00", got)
		}
	})

	t.Run("only in-progress orders complete", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc, _, _ := newTestService(repo)
		id := uuid.New()
		repo.orders[id] = &model.Order{ID: id, StartDT: start, Status: model.OrderStatusCreated}

		_, _, err := svc.Complete(ctx, CompleteOrderInput{
			Principal: managerPrincipal(),
			OrderID:   id,
			EndDT:     start.Add(time.Hour),
		})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("err = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("viewer denied", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc, _, _ := newTestService(repo)

		_, _, err := svc.Complete(ctx, CompleteOrderInput{
			Principal: viewerPrincipal(),
			OrderID:   uuid.New(),
			EndDT:     start,
		})
		if !errors.Is(err, ErrPermissionDenied) {
			t.Fatalf("err = %v, want ErrPermissionDenied", err)
		}
	})
}

func TestChangeStatus(t *testing.T) {
	ctx := context.Background()

	seed := func(repo *fakeOrderRepo, status model.OrderStatus) uuid.UUID {
		id := uuid.New()
		repo.orders[id] = &model.Order{ID: id, StartDT: time.Now(), Status: status}
		return id
	}

	t.Run("allowed transition", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc, _, _ := newTestService(repo)
		id := seed(repo, model.OrderStatusCreated)

		if err := svc.ChangeStatus(ctx, id, model.OrderStatusApproved, managerPrincipal()); err != nil {
			t.Fatalf("ChangeStatus: %v", err)
		}
		if repo.lastStatus != model.OrderStatusApproved {
			t.Errorf("persisted status = %s", repo.lastStatus)
		}
	})

	t.Run("completion not allowed here", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc, _, _ := newTestService(repo)
		id := seed(repo, model.OrderStatusInProgress)

		err := svc.ChangeStatus(ctx, id, model.OrderStatusCompleted, managerPrincipal())
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("err = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("cancelled can only be deleted", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc, _, _ := newTestService(repo)
		id := seed(repo, model.OrderStatusCancelled)

		if err := svc.ChangeStatus(ctx, id, model.OrderStatusDeleted, managerPrincipal()); err != nil {
			t.Fatalf("ChangeStatus: %v", err)
		}
		err := svc.ChangeStatus(ctx, id, model.OrderStatusCreated, managerPrincipal())
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("err = %v, want ErrInvalidInput", err)
		}
	})
}

func TestPreview(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Hour)

	repo := newFakeOrderRepo()
	svc, _, _ := newTestService(repo)

	snapshot, err := svc.Preview(ctx, PreviewInput{
		Principal: viewerPrincipal(),
		StartDT:   start,
		EndDT:     &end,
		Items: []ItemInput{{
			ItemType:  model.ItemTypeEquipment,
			Name:      "Loader",
			UnitPrice: decimal.NewFromInt(200),
		}},
	})
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if got := snapshot.Summary.Total; got != "600.00" {
		t.Errorf("total = %s, want 600.00", got)
	}
	if repo.createCalls != 0 || repo.saveCalls != 0 {
		t.Error("preview must not persist anything")
	}
}

func TestInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("requires snapshot", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc, invoiceGen, _ := newTestService(repo)
		id := uuid.New()
		repo.orders[id] = &model.Order{ID: id, Number: "ORD-3", StartDT: time.Now(), Status: model.OrderStatusDraft}

		_, err := svc.Invoice(ctx, id, managerPrincipal())
		if !errors.Is(err, ErrNoSnapshot) {
			t.Fatalf("err = %v, want ErrNoSnapshot", err)
		}
		if invoiceGen.calls != 0 {
			t.Error("generator must not run without a snapshot")
		}
	})

	t.Run("renders persisted snapshot", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc, invoiceGen, _ := newTestService(repo)
		id := uuid.New()
		repo.orders[id] = &model.Order{
			ID:            id,
			Number:        "ORD 2025/04",
			StartDT:       time.Now(),
			Status:        model.OrderStatusCompleted,
			PriceSnapshot: &model.PriceSnapshot{Summary: model.SnapshotSummary{Total: "10.00"}},
		}

		result, err := svc.Invoice(ctx, id, viewerPrincipal())
		if err != nil {
			t.Fatalf("Invoice: %v", err)
		}
		if invoiceGen.calls != 1 {
			t.Fatalf("generator calls = %d, want 1", invoiceGen.calls)
		}
		if result.FileName != "invoice-ORD-2025-04.pdf" {
			t.Errorf("file name = %s", result.FileName)
		}
		if string(result.Content) != "%PDF" {
			t.Errorf("content = %q", result.Content)
		}
	})
}

func TestExportOrders(t *testing.T) {
	ctx := context.Background()

	t.Run("builds workbook for period", func(t *testing.T) {
		repo := newFakeOrderRepo()
		repo.rows = []model.ExportRow{{Number: "ORD-1", Status: model.OrderStatusCompleted}}
		svc, _, exportGen := newTestService(repo)

		result, err := svc.ExportOrders(ctx, ExportInput{
			Principal:   managerPrincipal(),
			PeriodStart: time.Date(2025, 3, 1, 15, 30, 0, 0, time.UTC),
			PeriodEnd:   time.Date(2025, 3, 31, 8, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("ExportOrders: %v", err)
		}
		if result.FileName != "orders-20250301-20250331.xlsx" {
			t.Errorf("file name = %s", result.FileName)
		}
		if len(exportGen.last.Rows) != 1 {
			t.Errorf("rows = %d, want 1", len(exportGen.last.Rows))
		}
		if !exportGen.last.PeriodStart.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("period start not normalized: %v", exportGen.last.PeriodStart)
		}
	})

	t.Run("inverted period rejected", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc, _, _ := newTestService(repo)

		_, err := svc.ExportOrders(ctx, ExportInput{
			Principal:   managerPrincipal(),
			PeriodStart: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
			PeriodEnd:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("err = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("operator denied", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc, _, _ := newTestService(repo)

		_, err := svc.ExportOrders(ctx, ExportInput{
			Principal:   operatorPrincipal(),
			PeriodStart: time.Now(),
			PeriodEnd:   time.Now(),
		})
		if !errors.Is(err, ErrPermissionDenied) {
			t.Fatalf("err = %v, want ErrPermissionDenied", err)
		}
	})
}
