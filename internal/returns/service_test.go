package returns

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hardlinehq/hardline-backend/internal/stock"
	"github.com/hardlinehq/hardline-backend/pkg/db/models"
	"github.com/hardlinehq/hardline-backend/pkg/enums"
	pkgerrors "github.com/hardlinehq/hardline-backend/pkg/errors"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(tx)
	})
}

type gormOrders struct {
	db *gorm.DB
}

func (o gormOrders) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := o.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	return &order, nil
}

type fixture struct {
	db  *gorm.DB
	svc Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := "file:returns_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&models.Product{}, &models.StockMovement{},
		&models.Order{}, &models.OrderItem{},
		&models.ReturnExchange{}, &models.ReturnItem{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(NewRepository(db), gormOrders{db: db}, stock.NewLedger(db), gormTxRunner{db: db}, nil, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return &fixture{db: db, svc: svc}
}

func (f *fixture) seedProduct(t *testing.T, name string, stockQty int) uuid.UUID {
	t.Helper()
	product := models.Product{
		ID:        uuid.New(),
		SKU:       "SKU-" + uuid.NewString()[:8],
		Name:      name,
		Category:  "paint",
		UnitPrice: decimal.NewFromInt(35),
		Stock:     stockQty,
		Available: stockQty > 0,
		IsActive:  true,
	}
	if err := f.db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product.ID
}

func (f *fixture) seedDeliveredOrder(t *testing.T, deliveredAgo time.Duration, lines ...models.OrderItem) *models.Order {
	t.Helper()
	deliveredAt := time.Now().UTC().Add(-deliveredAgo)
	total := decimal.Zero
	for i := range lines {
		lines[i].ID = uuid.New()
		total = total.Add(lines[i].UnitPrice.Mul(decimal.NewFromInt(int64(lines[i].Quantity))))
	}
	order := models.Order{
		ID:            uuid.New(),
		CustomerID:    uuid.New(),
		CustomerEmail: "customer@example.com",
		Status:        enums.OrderStatusDelivered,
		TotalAmount:   total,
		DeliveredAt:   &deliveredAt,
		Items:         lines,
	}
	if err := f.db.Create(&order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return &order
}

func TestCreateComputesRefundFromPricePaid(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	paint := f.seedProduct(t, "exterior paint", 10)
	order := f.seedDeliveredOrder(t, 24*time.Hour, models.OrderItem{
		ProductID:   paint,
		ProductName: "exterior paint",
		Quantity:    3,
		UnitPrice:   decimal.NewFromInt(40),
	})

	request, err := f.svc.Create(ctx, CreateReturnInput{
		OrderID: order.ID,
		Reason:  "wrong color",
		Items:   []ReturnLine{{ProductID: paint, Qty: 2}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if request.Status != enums.ReturnStatusPending {
		t.Fatalf("expected PENDING, got %s", request.Status)
	}
	// refund uses the order's price, not the current catalog price
	if !request.RefundAmount.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("expected refund 80, got %s", request.RefundAmount)
	}
	if request.CustomerID != order.CustomerID {
		t.Fatalf("expected customer copied from the order")
	}
}

func TestCreateEligibility(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	paint := f.seedProduct(t, "exterior paint", 10)
	line := models.OrderItem{ProductID: paint, ProductName: "exterior paint", Quantity: 1, UnitPrice: decimal.NewFromInt(35)}

	t.Run("undelivered order", func(t *testing.T) {
		order := f.seedDeliveredOrder(t, time.Hour, line)
		if err := f.db.Model(&models.Order{}).Where("id = ?", order.ID).
			Updates(map[string]any{"status": enums.OrderStatusShipped, "delivered_at": nil}).Error; err != nil {
			t.Fatalf("rewind order: %v", err)
		}
		_, err := f.svc.Create(ctx, CreateReturnInput{OrderID: order.ID, Reason: "x", Items: []ReturnLine{{ProductID: paint, Qty: 1}}})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
			t.Fatalf("expected state conflict, got %v", err)
		}
	})

	t.Run("window closed", func(t *testing.T) {
		order := f.seedDeliveredOrder(t, 31*24*time.Hour, line)
		_, err := f.svc.Create(ctx, CreateReturnInput{OrderID: order.ID, Reason: "x", Items: []ReturnLine{{ProductID: paint, Qty: 1}}})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
			t.Fatalf("expected state conflict, got %v", err)
		}
	})

	t.Run("active return blocks a second one", func(t *testing.T) {
		order := f.seedDeliveredOrder(t, time.Hour, line)
		input := CreateReturnInput{OrderID: order.ID, Reason: "x", Items: []ReturnLine{{ProductID: paint, Qty: 1}}}
		if _, err := f.svc.Create(ctx, input); err != nil {
			t.Fatalf("first create: %v", err)
		}
		_, err := f.svc.Create(ctx, input)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("settled return does not block", func(t *testing.T) {
		order := f.seedDeliveredOrder(t, time.Hour, line)
		input := CreateReturnInput{OrderID: order.ID, Reason: "x", Items: []ReturnLine{{ProductID: paint, Qty: 1}}}
		first, err := f.svc.Create(ctx, input)
		if err != nil {
			t.Fatalf("first create: %v", err)
		}
		if _, err := f.svc.Cancel(ctx, first.ID); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		if _, err := f.svc.Create(ctx, input); err != nil {
			t.Fatalf("second create after cancel: %v", err)
		}
	})

	t.Run("product not on the order", func(t *testing.T) {
		order := f.seedDeliveredOrder(t, time.Hour, line)
		_, err := f.svc.Create(ctx, CreateReturnInput{OrderID: order.ID, Reason: "x", Items: []ReturnLine{{ProductID: uuid.New(), Qty: 1}}})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("more than was ordered", func(t *testing.T) {
		order := f.seedDeliveredOrder(t, time.Hour, line)
		_, err := f.svc.Create(ctx, CreateReturnInput{OrderID: order.ID, Reason: "x", Items: []ReturnLine{{ProductID: paint, Qty: 2}}})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestProcessToCompletedRestocks(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	paint := f.seedProduct(t, "exterior paint", 4)
	order := f.seedDeliveredOrder(t, time.Hour, models.OrderItem{
		ProductID:   paint,
		ProductName: "exterior paint",
		Quantity:    3,
		UnitPrice:   decimal.NewFromInt(35),
	})

	request, err := f.svc.Create(ctx, CreateReturnInput{
		OrderID: order.ID,
		Reason:  "damaged in transit",
		Items:   []ReturnLine{{ProductID: paint, Qty: 3}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, status := range []enums.ReturnStatus{
		enums.ReturnStatusApproved,
		enums.ReturnStatusInTransit,
		enums.ReturnStatusReceived,
		enums.ReturnStatusInspecting,
	} {
		if request, err = f.svc.Process(ctx, request.ID, status, "returns-desk"); err != nil {
			t.Fatalf("process to %s: %v", status, err)
		}
		if request.CompletedAt != nil {
			t.Fatalf("completed_at must not be set before COMPLETED")
		}
	}

	request, err = f.svc.Process(ctx, request.ID, enums.ReturnStatusCompleted, "returns-desk")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if request.Status != enums.ReturnStatusCompleted || request.CompletedAt == nil {
		t.Fatalf("expected stamped COMPLETED, got %+v", request)
	}
	if request.ProcessedBy == nil || *request.ProcessedBy != "returns-desk" {
		t.Fatalf("expected processed_by stamped, got %v", request.ProcessedBy)
	}

	ledger := stock.NewLedger(f.db)
	stockNow, _ := ledger.Read(ctx, paint)
	if stockNow != 7 {
		t.Fatalf("expected restock to 7, got %d", stockNow)
	}
	movements, err := ledger.Movements(ctx, paint)
	if err != nil {
		t.Fatalf("movements: %v", err)
	}
	if len(movements) != 1 || movements[0].Type != enums.StockMovementReturn || movements[0].Quantity != 3 {
		t.Fatalf("expected one RETURN movement of +3, got %+v", movements)
	}

	// a settled request admits no further processing
	if _, err := f.svc.Process(ctx, request.ID, enums.ReturnStatusApproved, "returns-desk"); err == nil {
		t.Fatal("expected processing a settled request to fail")
	}
}

func TestProcessRejectionDoesNotRestock(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	paint := f.seedProduct(t, "exterior paint", 4)
	order := f.seedDeliveredOrder(t, time.Hour, models.OrderItem{
		ProductID:   paint,
		ProductName: "exterior paint",
		Quantity:    2,
		UnitPrice:   decimal.NewFromInt(35),
	})

	request, err := f.svc.Create(ctx, CreateReturnInput{
		OrderID: order.ID,
		Reason:  "changed my mind",
		Items:   []ReturnLine{{ProductID: paint, Qty: 2}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	request, err = f.svc.Process(ctx, request.ID, enums.ReturnStatusRejected, "returns-desk")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if request.Status != enums.ReturnStatusRejected {
		t.Fatalf("expected REJECTED, got %s", request.Status)
	}

	stockNow, _ := stock.NewLedger(f.db).Read(ctx, paint)
	if stockNow != 4 {
		t.Fatalf("rejection must not touch stock, got %d", stockNow)
	}
}

func TestReturnQueries(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	paint := f.seedProduct(t, "exterior paint", 10)
	line := models.OrderItem{ProductID: paint, ProductName: "exterior paint", Quantity: 1, UnitPrice: decimal.NewFromInt(35)}

	first := f.seedDeliveredOrder(t, time.Hour, line)
	second := f.seedDeliveredOrder(t, time.Hour, line)

	pending, err := f.svc.Create(ctx, CreateReturnInput{OrderID: first.ID, Reason: "x", Items: []ReturnLine{{ProductID: paint, Qty: 1}}})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	approved, err := f.svc.Create(ctx, CreateReturnInput{OrderID: second.ID, Reason: "x", Items: []ReturnLine{{ProductID: paint, Qty: 1}}})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if _, err := f.svc.Process(ctx, approved.ID, enums.ReturnStatusApproved, "returns-desk"); err != nil {
		t.Fatalf("approve: %v", err)
	}

	all, err := f.svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(all))
	}

	waiting, err := f.svc.ListPending(ctx)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(waiting) != 1 || waiting[0].ID != pending.ID {
		t.Fatalf("unexpected pending set %+v", waiting)
	}

	approvedSet, err := f.svc.ListByStatus(ctx, enums.ReturnStatusApproved)
	if err != nil {
		t.Fatalf("by status: %v", err)
	}
	if len(approvedSet) != 1 || approvedSet[0].ID != approved.ID {
		t.Fatalf("unexpected approved set %+v", approvedSet)
	}
}
