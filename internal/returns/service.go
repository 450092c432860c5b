package returns

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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

// Orders is the slice of order fulfillment the returns desk needs.
type Orders interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// ReturnLine is one product line the customer wants to send back.
type ReturnLine struct {
	ProductID uuid.UUID
	Qty       int
}

// CreateReturnInput describes a new return or exchange request.
type CreateReturnInput struct {
	OrderID uuid.UUID
	Reason  string
	Items   []ReturnLine
}

// Service runs the returns desk: eligibility, refund math, and the
// restock on completion.
type Service interface {
	Create(ctx context.Context, input CreateReturnInput) (*models.ReturnExchange, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.ReturnExchange, error)
	Process(ctx context.Context, id uuid.UUID, target enums.ReturnStatus, processedBy string) (*models.ReturnExchange, error)
	Cancel(ctx context.Context, id uuid.UUID) (*models.ReturnExchange, error)
	List(ctx context.Context) ([]models.ReturnExchange, error)
	ListByStatus(ctx context.Context, status enums.ReturnStatus) ([]models.ReturnExchange, error)
	ListPending(ctx context.Context) ([]models.ReturnExchange, error)
}

type service struct {
	repo   *Repository
	orders Orders
	ledger stock.Ledger
	tx     txRunner
	logg   *logger.Logger
	window time.Duration
}

// NewService builds the returns service. window bounds how long after
// delivery a return may be opened.
func NewService(repo *Repository, orders Orders, ledger stock.Ledger, tx txRunner, logg *logger.Logger, window time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("return repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order lookup required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if window <= 0 {
		window = 30 * 24 * time.Hour
	}
	return &service{repo: repo, orders: orders, ledger: ledger, tx: tx, logg: logg, window: window}, nil
}

// Create opens a return for a delivered order. The order must have been
// delivered within the return window and must not already have an
// active return. The refund is the sum of quantity times the unit price
// the customer actually paid.
func (s *service) Create(ctx context.Context, input CreateReturnInput) (*models.ReturnExchange, error) {
	if err := validateCreateReturnInput(input); err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusDelivered || order.DeliveredAt == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only delivered orders can be returned").
			WithDetails(map[string]any{"order_status": string(order.Status)})
	}
	if time.Since(*order.DeliveredAt) > s.window {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "return window has closed").
			WithDetails(map[string]any{
				"delivered_at": order.DeliveredAt.Format(time.RFC3339),
				"window_days":  int(s.window.Hours() / 24),
			})
	}

	active, err := s.repo.HasActiveForOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already has an active return").
			WithDetails(map[string]any{"order_id": order.ID.String()})
	}

	ordered := make(map[uuid.UUID]models.OrderItem, len(order.Items))
	for _, item := range order.Items {
		ordered[item.ProductID] = item
	}

	items := make([]models.ReturnItem, 0, len(input.Items))
	refund := decimal.Zero
	for _, line := range input.Items {
		source, ok := ordered[line.ProductID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product was not on the order").
				WithDetails(map[string]any{"product_id": line.ProductID.String()})
		}
		if line.Qty > source.Quantity {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot return more than was ordered").
				WithDetails(map[string]any{
					"product_id": line.ProductID.String(),
					"ordered":    source.Quantity,
					"requested":  line.Qty,
				})
		}
		items = append(items, models.ReturnItem{
			ProductID: line.ProductID,
			Quantity:  line.Qty,
			UnitPrice: source.UnitPrice,
		})
		refund = refund.Add(source.UnitPrice.Mul(decimal.NewFromInt(int64(line.Qty))))
	}

	request := models.ReturnExchange{
		ID:           uuid.New(),
		OrderID:      order.ID,
		CustomerID:   order.CustomerID,
		Status:       enums.ReturnStatusPending,
		Reason:       input.Reason,
		RefundAmount: refund,
		Items:        items,
	}
	if err := s.repo.Create(ctx, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.ReturnExchange, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "return id required")
	}
	return s.repo.FindByID(ctx, id)
}

// Process moves the request into the given status. Reaching COMPLETED
// stamps completion and puts every returned item back on the shelf in
// the same transaction.
func (s *service) Process(ctx context.Context, id uuid.UUID, target enums.ReturnStatus, processedBy string) (*models.ReturnExchange, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "return id required")
	}
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid return status").
			WithDetails(map[string]any{"status": string(target)})
	}
	if target == enums.ReturnStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot process back to PENDING")
	}
	if processedBy == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "processed by required")
	}

	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "return request is already settled").
			WithDetails(map[string]any{
				"current": string(request.Status),
				"target":  string(target),
			})
	}

	now := time.Now().UTC()
	stamp := map[string]any{"processed_by": processedBy}
	if target == enums.ReturnStatusCompleted {
		stamp["completed_at"] = now
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			won, err := s.repo.WithTx(tx).Transition(ctx, request.ID, request.Status, target, stamp)
			if err != nil {
				return err
			}
			if !won {
				return requestMoved(request.ID)
			}
			for _, item := range request.Items {
				if err := s.ledger.Increment(ctx, tx, item.ProductID, item.Quantity, enums.StockMovementReturn, &request.ID); err != nil {
					return err
				}
			}
			return nil
		})
	} else {
		var won bool
		won, err = s.repo.Transition(ctx, request.ID, request.Status, target, stamp)
		if err == nil && !won {
			err = requestMoved(request.ID)
		}
	}
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, request.ID)
}

// Cancel withdraws a request that has not been settled yet.
func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*models.ReturnExchange, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "return id required")
	}
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "return request is already settled").
			WithDetails(map[string]any{"current": string(request.Status)})
	}
	won, err := s.repo.Transition(ctx, request.ID, request.Status, enums.ReturnStatusCancelled, nil)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, requestMoved(request.ID)
	}
	return s.repo.FindByID(ctx, request.ID)
}

func (s *service) List(ctx context.Context) ([]models.ReturnExchange, error) {
	return s.repo.List(ctx)
}

func (s *service) ListByStatus(ctx context.Context, status enums.ReturnStatus) ([]models.ReturnExchange, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid return status").
			WithDetails(map[string]any{"status": string(status)})
	}
	return s.repo.ListByStatus(ctx, status)
}

func (s *service) ListPending(ctx context.Context) ([]models.ReturnExchange, error) {
	return s.repo.ListPending(ctx)
}

func requestMoved(id uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "return request changed concurrently").
		WithDetails(map[string]any{"return_id": id.String()})
}

func validateCreateReturnInput(input CreateReturnInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Reason == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "reason required")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "return needs at least one item")
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
