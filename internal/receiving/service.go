package receiving

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hardlinehq/hardline-backend/internal/stock"
	"github.com/hardlinehq/hardline-backend/pkg/db/models"
	"github.com/hardlinehq/hardline-backend/pkg/enums"
	pkgerrors "github.com/hardlinehq/hardline-backend/pkg/errors"
	"github.com/hardlinehq/hardline-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Catalog is the slice of the product catalog receiving needs.
type Catalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// ReceiptLine is one delivered product line on an inbound shipment.
type ReceiptLine struct {
	ProductID   uuid.UUID
	OrderedQty  int
	ReceivedQty int
	Condition   enums.ItemCondition
}

// CreateReceiptInput describes one inbound delivery.
type CreateReceiptInput struct {
	PurchaseOrderID uuid.UUID
	SupplierID      uuid.UUID
	ReceivedBy      string
	Notes           *string
	Lines           []ReceiptLine
}

// Service books inbound deliveries onto the shelf.
type Service interface {
	CreateGoodsReceipt(ctx context.Context, input CreateReceiptInput) (*models.GoodsReceiptNote, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.GoodsReceiptNote, error)
	List(ctx context.Context) ([]models.GoodsReceiptNote, error)
	ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]models.GoodsReceiptNote, error)
	ListByStatus(ctx context.Context, status enums.GoodsReceiptStatus) ([]models.GoodsReceiptNote, error)
}

type service struct {
	repo    *Repository
	catalog Catalog
	ledger  stock.Ledger
	tx      txRunner
	logg    *logger.Logger
}

// NewService builds the goods receipt service.
func NewService(repo *Repository, catalog Catalog, ledger stock.Ledger, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("receipt repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, catalog: catalog, ledger: ledger, tx: tx, logg: logg}, nil
}

// CreateGoodsReceipt writes the note and puts every received quantity
// on the shelf in one transaction. The note's status is classified from
// its lines at creation and never changes.
func (s *service) CreateGoodsReceipt(ctx context.Context, input CreateReceiptInput) (*models.GoodsReceiptNote, error) {
	if err := validateCreateReceiptInput(input); err != nil {
		return nil, err
	}

	items := make([]models.GoodsReceiptItem, 0, len(input.Lines))
	for _, line := range input.Lines {
		product, err := s.catalog.FindByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		condition := line.Condition
		if condition == "" {
			condition = enums.ItemConditionGood
		}
		items = append(items, models.GoodsReceiptItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			OrderedQty:  line.OrderedQty,
			ReceivedQty: line.ReceivedQty,
			Condition:   condition,
		})
	}

	receipt := models.GoodsReceiptNote{
		ID:              uuid.New(),
		PurchaseOrderID: input.PurchaseOrderID,
		SupplierID:      input.SupplierID,
		Status:          classify(items),
		ReceivedBy:      input.ReceivedBy,
		Notes:           input.Notes,
		Items:           items,
		ReceivedAt:      time.Now().UTC(),
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, &receipt); err != nil {
			return err
		}
		for _, item := range receipt.Items {
			if item.ReceivedQty == 0 {
				continue
			}
			if err := s.ledger.Increment(ctx, tx, item.ProductID, item.ReceivedQty, enums.StockMovementReceipt, &receipt.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.GoodsReceiptNote, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receipt id required")
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]models.GoodsReceiptNote, error) {
	return s.repo.List(ctx)
}

func (s *service) ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]models.GoodsReceiptNote, error) {
	if supplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	return s.repo.ListBySupplier(ctx, supplierID)
}

func (s *service) ListByStatus(ctx context.Context, status enums.GoodsReceiptStatus) ([]models.GoodsReceiptNote, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid receipt status").
			WithDetails(map[string]any{"status": string(status)})
	}
	return s.repo.ListByStatus(ctx, status)
}

// classify derives the note status from its lines. Any damaged or
// over-delivered line marks the whole note a discrepancy; otherwise any
// short line makes it partial.
func classify(items []models.GoodsReceiptItem) enums.GoodsReceiptStatus {
	partial := false
	for _, item := range items {
		if item.Condition.IsDiscrepant() || item.ReceivedQty > item.OrderedQty {
			return enums.GoodsReceiptStatusDiscrepancy
		}
		if item.ReceivedQty < item.OrderedQty {
			partial = true
		}
	}
	if partial {
		return enums.GoodsReceiptStatusPartial
	}
	return enums.GoodsReceiptStatusCompleted
}

func validateCreateReceiptInput(input CreateReceiptInput) error {
	if input.PurchaseOrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "purchase order id required")
	}
	if input.SupplierID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	if input.ReceivedBy == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "received by required")
	}
	if len(input.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "receipt needs at least one line")
	}
	for _, line := range input.Lines {
		if line.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
		}
		if line.OrderedQty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "ordered quantity must be positive")
		}
		if line.ReceivedQty < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "received quantity cannot be negative")
		}
		if line.Condition != "" && !line.Condition.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid item condition").
				WithDetails(map[string]any{"condition": string(line.Condition)})
		}
	}
	return nil
}
