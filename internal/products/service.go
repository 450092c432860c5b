package products

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hardlinehq/hardline-backend/pkg/db/models"
	pkgerrors "github.com/hardlinehq/hardline-backend/pkg/errors"
)

// CreateProductInput describes a new catalog product.
type CreateProductInput struct {
	SKU          string
	Name         string
	Description  *string
	Category     string
	UnitPrice    decimal.Decimal
	InitialStock int
	ReorderLevel int
}

// Service is the minimal catalog surface the back office exposes.
type Service interface {
	Create(ctx context.Context, input CreateProductInput) (*models.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	ListBelowReorderLevel(ctx context.Context) ([]models.Product, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if input.SKU == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku required")
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if input.UnitPrice.IsNegative() || input.UnitPrice.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price must be positive")
	}
	if input.InitialStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial stock cannot be negative")
	}
	if input.ReorderLevel < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reorder level cannot be negative")
	}

	product := models.Product{
		ID:           uuid.New(),
		SKU:          input.SKU,
		Name:         input.Name,
		Description:  input.Description,
		Category:     input.Category,
		UnitPrice:    input.UnitPrice,
		Stock:        input.InitialStock,
		ReorderLevel: input.ReorderLevel,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]models.Product, error) {
	return s.repo.List(ctx)
}

func (s *service) ListBelowReorderLevel(ctx context.Context) ([]models.Product, error) {
	return s.repo.ListBelowReorderLevel(ctx)
}
