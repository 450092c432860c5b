package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hardlinehq/hardline-backend/pkg/db/models"
	"github.com/hardlinehq/hardline-backend/pkg/enums"
	pkgerrors "github.com/hardlinehq/hardline-backend/pkg/errors"
)

// Ledger is the single mutation surface for product stock. Every
// deduction goes through a guarded single-statement update so that
// concurrent writers can never push stock below zero, and every
// successful mutation leaves a stock movement audit row.
type Ledger interface {
	TryDeduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int, movement enums.StockMovementType, referenceID *uuid.UUID) error
	Increment(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int, movement enums.StockMovementType, referenceID *uuid.UUID) error
	Read(ctx context.Context, productID uuid.UUID) (int, error)
	Movements(ctx context.Context, productID uuid.UUID) ([]models.StockMovement, error)
}

type ledgerImpl struct {
	db *gorm.DB
}

// NewLedger builds the default ledger bound to the shared connection.
// Operations accept an optional transaction so callers can make stock
// writes part of a larger unit of work.
func NewLedger(db *gorm.DB) Ledger {
	return &ledgerImpl{db: db}
}

func (l *ledgerImpl) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return l.db
}

// TryDeduct removes qty units if and only if at least qty units are on
// hand. RowsAffected distinguishes the guard losing from the product
// not existing.
func (l *ledgerImpl) TryDeduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int, movement enums.StockMovementType, referenceID *uuid.UUID) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "deduct quantity must be positive")
	}

	conn := l.conn(tx)
	res := conn.WithContext(ctx).Exec(`
		UPDATE products
		SET stock = stock - ?,
			available = (stock - ?) > 0,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock >= ?
	`, qty, qty, productID, qty)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "deduct stock")
	}
	if res.RowsAffected == 0 {
		available, err := l.readWith(ctx, conn, productID)
		if err != nil {
			return err
		}
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
			WithDetails(map[string]any{
				"product_id": productID.String(),
				"requested":  qty,
				"available":  available,
			})
	}

	return l.record(ctx, conn, productID, -qty, movement, referenceID)
}

// Increment adds qty units back on hand.
func (l *ledgerImpl) Increment(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int, movement enums.StockMovementType, referenceID *uuid.UUID) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "increment quantity must be positive")
	}

	conn := l.conn(tx)
	res := conn.WithContext(ctx).Exec(`
		UPDATE products
		SET stock = stock + ?,
			available = (stock + ?) > 0,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, qty, productID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "increment stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
			WithDetails(map[string]any{"product_id": productID.String()})
	}

	return l.record(ctx, conn, productID, qty, movement, referenceID)
}

// Read returns the on-hand count for the product.
func (l *ledgerImpl) Read(ctx context.Context, productID uuid.UUID) (int, error) {
	return l.readWith(ctx, l.db, productID)
}

func (l *ledgerImpl) readWith(ctx context.Context, conn *gorm.DB, productID uuid.UUID) (int, error) {
	var product models.Product
	if err := conn.WithContext(ctx).Select("id", "stock").First(&product, "id = ?", productID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": productID.String()})
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read stock")
	}
	return product.Stock, nil
}

// Movements lists the audit trail for the product, newest first.
func (l *ledgerImpl) Movements(ctx context.Context, productID uuid.UUID) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	if err := l.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&movements).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock movements")
	}
	return movements, nil
}

func (l *ledgerImpl) record(ctx context.Context, conn *gorm.DB, productID uuid.UUID, signedQty int, movement enums.StockMovementType, referenceID *uuid.UUID) error {
	row := models.StockMovement{
		ID:          uuid.New(),
		ProductID:   productID,
		Type:        movement,
		Quantity:    signedQty,
		ReferenceID: referenceID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := conn.WithContext(ctx).Create(&row).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock movement")
	}
	return nil
}
