package stock

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hardlinehq/hardline-backend/pkg/db/models"
	"github.com/hardlinehq/hardline-backend/pkg/enums"
	pkgerrors "github.com/hardlinehq/hardline-backend/pkg/errors"
)

func TestTryDeductGuardsAgainstOverdraw(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	ledger := NewLedger(db)

	product := seedProduct(t, db, 5)

	if err := ledger.TryDeduct(ctx, nil, product, 3, enums.StockMovementPick, nil); err != nil {
		t.Fatalf("first deduct: %v", err)
	}

	err := ledger.TryDeduct(ctx, nil, product, 3, enums.StockMovementPick, nil)
	if err == nil {
		t.Fatal("expected insufficient stock")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error: %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected shortfall details, got %v", typed.Details())
	}
	if details["available"] != 2 || details["requested"] != 3 {
		t.Fatalf("unexpected shortfall detail: %v", details)
	}

	stock, err := ledger.Read(ctx, product)
	if err != nil {
		t.Fatalf("read stock: %v", err)
	}
	if stock != 2 {
		t.Fatalf("failed deduct must not change stock, got %d", stock)
	}
}

func TestTryDeductUnknownProduct(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ledger := NewLedger(db)

	err := ledger.TryDeduct(context.Background(), nil, uuid.New(), 1, enums.StockMovementPick, nil)
	if err == nil {
		t.Fatal("expected product not found")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIncrementAndMovements(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	ledger := NewLedger(db)

	product := seedProduct(t, db, 0)
	receipt := uuid.New()

	if err := ledger.Increment(ctx, nil, product, 10, enums.StockMovementReceipt, &receipt); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := ledger.TryDeduct(ctx, nil, product, 4, enums.StockMovementConfirm, nil); err != nil {
		t.Fatalf("deduct: %v", err)
	}

	stock, err := ledger.Read(ctx, product)
	if err != nil {
		t.Fatalf("read stock: %v", err)
	}
	if stock != 6 {
		t.Fatalf("expected stock 6, got %d", stock)
	}

	var loaded models.Product
	if err := db.First(&loaded, "id = ?", product).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if !loaded.Available {
		t.Fatalf("expected product to be flagged available")
	}

	movements, err := ledger.Movements(ctx, product)
	if err != nil {
		t.Fatalf("list movements: %v", err)
	}
	if len(movements) != 2 {
		t.Fatalf("expected 2 movement rows, got %d", len(movements))
	}
	total := 0
	for _, m := range movements {
		total += m.Quantity
	}
	if total != 6 {
		t.Fatalf("movement quantities should sum to on-hand delta, got %d", total)
	}
}

func TestIncrementUnknownProduct(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ledger := NewLedger(db)

	err := ledger.Increment(context.Background(), nil, uuid.New(), 5, enums.StockMovementReceipt, nil)
	if err == nil {
		t.Fatal("expected product not found")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInvalidQuantities(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ledger := NewLedger(db)
	product := seedProduct(t, db, 5)

	for _, qty := range []int{0, -2} {
		if err := ledger.TryDeduct(context.Background(), nil, product, qty, enums.StockMovementPick, nil); err == nil {
			t.Fatalf("expected validation error for deduct qty %d", qty)
		}
		if err := ledger.Increment(context.Background(), nil, product, qty, enums.StockMovementReceipt, nil); err == nil {
			t.Fatalf("expected validation error for increment qty %d", qty)
		}
	}
}

func seedProduct(t *testing.T, db *gorm.DB, stock int) uuid.UUID {
	t.Helper()
	product := models.Product{
		ID:        uuid.New(),
		SKU:       "SKU-" + uuid.NewString()[:8],
		Name:      "impact driver",
		Category:  "power-tools",
		UnitPrice: decimal.NewFromInt(129),
		Stock:     stock,
		Available: stock > 0,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product.ID
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:stock_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.StockMovement{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
