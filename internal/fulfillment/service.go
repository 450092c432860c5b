package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hardlinehq/hardline-backend/internal/notifications"
	"github.com/hardlinehq/hardline-backend/internal/reservation"
	"github.com/hardlinehq/hardline-backend/internal/stock"
	"github.com/hardlinehq/hardline-backend/pkg/db/models"
	"github.com/hardlinehq/hardline-backend/pkg/enums"
	pkgerrors "github.com/hardlinehq/hardline-backend/pkg/errors"
	"github.com/hardlinehq/hardline-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Catalog is the slice of the product catalog fulfillment needs.
type Catalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// OrderLine is one requested product line on a new order.
type OrderLine struct {
	ProductID uuid.UUID
	Qty       int
}

// CreateOrderInput carries everything needed to place an order.
type CreateOrderInput struct {
	CustomerID     uuid.UUID
	CustomerEmail  string
	Items          []OrderLine
	Notes          *string
	ReservationTTL time.Duration
}

// Service drives orders through the fulfillment state machine.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListPending(ctx context.Context) ([]models.Order, error)
	ListByStatus(ctx context.Context, status enums.OrderStatus) ([]models.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus) (*models.Order, error)
}

type service struct {
	repo         *Repository
	catalog      Catalog
	ledger       stock.Ledger
	reservations reservation.Service
	tx           txRunner
	notifier     notifications.Notifier
	logg         *logger.Logger
}

// NewService builds the fulfillment service with its collaborators.
func NewService(repo *Repository, catalog Catalog, ledger stock.Ledger, reservations reservation.Service, tx txRunner, notifier notifications.Notifier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if reservations == nil {
		return nil, fmt.Errorf("reservation service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:         repo,
		catalog:      catalog,
		ledger:       ledger,
		reservations: reservations,
		tx:           tx,
		notifier:     notifier,
		logg:         logg,
	}, nil
}

// CreateOrder stamps product names and prices onto the order lines,
// reserves stock for every line, and persists the order in PLACED. The
// reservation is all-or-nothing, so an unsellable line fails the whole
// order before anything is written.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if err := validateCreateOrderInput(input); err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(input.Items))
	holds := make([]reservation.ReserveItem, 0, len(input.Items))
	total := decimal.Zero
	for _, line := range input.Items {
		product, err := s.catalog.FindByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not sellable").
				WithDetails(map[string]any{"product_id": product.ID.String()})
		}
		items = append(items, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Qty,
			UnitPrice:   product.UnitPrice,
		})
		holds = append(holds, reservation.ReserveItem{ProductID: product.ID, Qty: line.Qty})
		total = total.Add(product.UnitPrice.Mul(decimal.NewFromInt(int64(line.Qty))))
	}

	orderID := uuid.New()
	if _, err := s.reservations.ReserveAll(ctx, orderID, input.CustomerID, holds, input.ReservationTTL); err != nil {
		return nil, err
	}

	order := models.Order{
		ID:            orderID,
		CustomerID:    input.CustomerID,
		CustomerEmail: input.CustomerEmail,
		Status:        enums.OrderStatusPlaced,
		TotalAmount:   total,
		Notes:         input.Notes,
		Items:         items,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, &order)
	})
	if err != nil {
		// hand the holds back so the failed order does not pin stock
		if releaseErr := s.reservations.Release(ctx, orderID, enums.ReservationReasonCancelled); releaseErr != nil && s.logg != nil {
			s.logg.Error(s.logg.WithOrderID(ctx, orderID.String()), "release after failed order create", releaseErr)
		}
		return nil, err
	}
	return &order, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListPending(ctx context.Context) ([]models.Order, error) {
	return s.repo.ListPending(ctx)
}

func (s *service) ListByStatus(ctx context.Context, status enums.OrderStatus) ([]models.Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
			WithDetails(map[string]any{"status": string(status)})
	}
	return s.repo.ListByStatus(ctx, status)
}

func (s *service) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	return s.repo.ListByCustomer(ctx, customerID)
}

// UpdateStatus moves an order through the state machine. A request for
// PACKED is stored as READY_TO_DISPATCH, PICKED deducts stock for every
// line in one transaction, DELIVERED notifies the customer after the
// commit, and CANCELLED hands reserved stock back.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
			WithDetails(map[string]any{"status": string(target)})
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(order.Status, target) {
		return nil, invalidTransition(order.Status, target)
	}

	// PACKED is a pass-through state: a pack request lands the order
	// directly in READY_TO_DISPATCH.
	stored := target
	if target == enums.OrderStatusPacked {
		stored = enums.OrderStatusReadyToDispatch
	}

	now := time.Now().UTC()
	stamp := map[string]any{}
	switch stored {
	case enums.OrderStatusDelivered:
		stamp["delivered_at"] = now
	case enums.OrderStatusCancelled:
		stamp["cancelled_at"] = now
	}

	switch stored {
	case enums.OrderStatusPicked:
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			won, err := s.repo.WithTx(tx).Transition(ctx, order.ID, order.Status, stored, stamp)
			if err != nil {
				return err
			}
			if !won {
				return orderMoved(order.ID)
			}
			for _, item := range order.Items {
				if err := s.ledger.TryDeduct(ctx, tx, item.ProductID, item.Quantity, enums.StockMovementPick, &order.ID); err != nil {
					return err
				}
			}
			return nil
		})
	default:
		var won bool
		won, err = s.repo.Transition(ctx, order.ID, order.Status, stored, stamp)
		if err == nil && !won {
			err = orderMoved(order.ID)
		}
	}
	if err != nil {
		return nil, err
	}

	switch stored {
	case enums.OrderStatusCancelled:
		if err := s.reservations.Release(ctx, order.ID, enums.ReservationReasonCancelled); err != nil && s.logg != nil {
			s.logg.Error(s.logg.WithOrderID(ctx, order.ID.String()), "release holds for cancelled order", err)
		}
	case enums.OrderStatusDelivered:
		if s.notifier != nil {
			updated, loadErr := s.repo.FindByID(ctx, order.ID)
			if loadErr != nil {
				updated = order
			}
			if notifyErr := s.notifier.OrderDelivered(ctx, updated); notifyErr != nil && s.logg != nil {
				s.logg.Error(s.logg.WithOrderID(ctx, order.ID.String()), "delivered notification failed", notifyErr)
			}
		}
	}

	return s.repo.FindByID(ctx, order.ID)
}

func orderMoved(orderID uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "order status changed concurrently").
		WithDetails(map[string]any{"order_id": orderID.String()})
}

func validateCreateOrderInput(input CreateOrderInput) error {
	if input.CustomerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if input.CustomerEmail == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer email required")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order needs at least one item")
	}
	for _, line := range input.Items {
		if line.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
		}
		if line.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
	}
	return nil
}
