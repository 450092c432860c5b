package receiving

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hardlinehq/hardline-backend/pkg/db/models"
	"github.com/hardlinehq/hardline-backend/pkg/enums"
	pkgerrors "github.com/hardlinehq/hardline-backend/pkg/errors"
)

// Repository persists goods receipt notes.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the receipt together with its line items.
func (r *Repository) Create(ctx context.Context, receipt *models.GoodsReceiptNote) error {
	if receipt.ID == uuid.Nil {
		receipt.ID = uuid.New()
	}
	for i := range receipt.Items {
		if receipt.Items[i].ID == uuid.Nil {
			receipt.Items[i].ID = uuid.New()
		}
		receipt.Items[i].ReceiptID = receipt.ID
	}
	if err := r.db.WithContext(ctx).Create(receipt).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create goods receipt")
	}
	return nil
}

// FindByID loads a receipt with its items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.GoodsReceiptNote, error) {
	var receipt models.GoodsReceiptNote
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&receipt, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "goods receipt not found").
				WithDetails(map[string]any{"receipt_id": id.String()})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find goods receipt")
	}
	return &receipt, nil
}

// List returns receipts newest first.
func (r *Repository) List(ctx context.Context) ([]models.GoodsReceiptNote, error) {
	var receipts []models.GoodsReceiptNote
	err := r.db.WithContext(ctx).
		Preload("Items").
		Order("received_at DESC").
		Find(&receipts).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list goods receipts")
	}
	return receipts, nil
}

// ListBySupplier returns a supplier's receipts, newest first.
func (r *Repository) ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]models.GoodsReceiptNote, error) {
	var receipts []models.GoodsReceiptNote
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("supplier_id = ?", supplierID).
		Order("received_at DESC").
		Find(&receipts).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list supplier receipts")
	}
	return receipts, nil
}

// ListByStatus returns receipts in the given status, newest first.
func (r *Repository) ListByStatus(ctx context.Context, status enums.GoodsReceiptStatus) ([]models.GoodsReceiptNote, error) {
	var receipts []models.GoodsReceiptNote
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("status = ?", status).
		Order("received_at DESC").
		Find(&receipts).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list receipts by status")
	}
	return receipts, nil
}
