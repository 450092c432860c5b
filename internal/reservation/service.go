package reservation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hardlinehq/hardline-backend/internal/stock"
	"github.com/hardlinehq/hardline-backend/pkg/db/models"
	"github.com/hardlinehq/hardline-backend/pkg/enums"
	pkgerrors "github.com/hardlinehq/hardline-backend/pkg/errors"
	"github.com/hardlinehq/hardline-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ReserveInput holds one requested stock hold.
type ReserveInput struct {
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	ProductID  uuid.UUID
	Qty        int
	TTL        time.Duration
}

// ReserveItem is one line of a multi-item reservation request.
type ReserveItem struct {
	ProductID uuid.UUID
	Qty       int
}

// StockStatus is the full availability picture for a product.
type StockStatus struct {
	ProductID          uuid.UUID `json:"productId"`
	ProductName        string    `json:"productName"`
	PhysicalStock      int       `json:"physicalStock"`
	ReservedStock      int       `json:"reservedStock"`
	AvailableStock     int       `json:"availableStock"`
	IsAvailable        bool      `json:"isAvailable"`
	ActiveReservations int       `json:"activeReservations"`
}

// SweepResult summarizes one expiry sweep.
type SweepResult struct {
	Scanned int
	Expired int
}

// Service is the reservation engine: it creates holds against
// available stock and walks them through their single terminal
// transition.
type Service interface {
	Reserve(ctx context.Context, input ReserveInput) (*models.Reservation, error)
	ReserveAll(ctx context.Context, orderID, customerID uuid.UUID, items []ReserveItem, ttl time.Duration) ([]models.Reservation, error)
	Confirm(ctx context.Context, orderID uuid.UUID) error
	Release(ctx context.Context, orderID uuid.UUID, reason enums.ReservationReason) error
	AvailableStock(ctx context.Context, productID uuid.UUID) (int, error)
	StockStatus(ctx context.Context, productID uuid.UUID) (*StockStatus, error)
	CheckStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error)
	CheckStockBulk(ctx context.Context, wanted map[uuid.UUID]int) (map[uuid.UUID]bool, error)
	ExpireStale(ctx context.Context) (SweepResult, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Reservation, error)
}

type service struct {
	repo       *Repository
	ledger     stock.Ledger
	tx         txRunner
	logg       *logger.Logger
	defaultTTL time.Duration
	sweepBatch int
}

// NewService builds the reservation engine with its dependencies.
func NewService(repo *Repository, ledger stock.Ledger, tx txRunner, logg *logger.Logger, defaultTTL time.Duration, sweepBatch int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reservation repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if defaultTTL <= 0 {
		defaultTTL = 15 * time.Minute
	}
	if sweepBatch <= 0 {
		sweepBatch = 200
	}
	return &service{
		repo:       repo,
		ledger:     ledger,
		tx:         tx,
		logg:       logg,
		defaultTTL: defaultTTL,
		sweepBatch: sweepBatch,
	}, nil
}

// Reserve places a single hold. The product row is locked for the
// duration of the transaction so concurrent requests for the same
// product serialize and the availability check cannot race.
func (s *service) Reserve(ctx context.Context, input ReserveInput) (*models.Reservation, error) {
	if err := validateReserveInput(input); err != nil {
		return nil, err
	}

	ttl := input.TTL
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	var created models.Reservation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		row, err := s.reserveLine(ctx, tx, input.OrderID, input.CustomerID, input.ProductID, input.Qty, ttl)
		if err != nil {
			return err
		}
		created = *row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ReserveAll places holds for every line or none of them. Lines are
// locked in product-id order so two overlapping multi-item requests
// cannot deadlock.
func (s *service) ReserveAll(ctx context.Context, orderID, customerID uuid.UUID, items []ReserveItem, ttl time.Duration) ([]models.Reservation, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}
	for _, item := range items {
		if item.ProductID == uuid.Nil || item.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "every item needs a product id and positive quantity")
		}
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	ordered := make([]ReserveItem, len(items))
	copy(ordered, items)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ProductID.String() < ordered[j].ProductID.String()
	})

	var created []models.Reservation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		created = created[:0]
		for _, item := range ordered {
			row, err := s.reserveLine(ctx, tx, orderID, customerID, item.ProductID, item.Qty, ttl)
			if err != nil {
				return err
			}
			created = append(created, *row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) reserveLine(ctx context.Context, tx *gorm.DB, orderID, customerID, productID uuid.UUID, qty int, ttl time.Duration) (*models.Reservation, error) {
	q := tx.WithContext(ctx)
	// sqlite rejects FOR UPDATE and serializes writers on its own.
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var product models.Product
	if err := q.First(&product, "id = ?", productID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": productID.String()})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock product")
	}

	repo := s.repo.WithTx(tx)
	reserved, err := repo.ActiveQtyByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	available := product.Stock - reserved
	if available < qty {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
			WithDetails(map[string]any{
				"product_id": productID.String(),
				"requested":  qty,
				"available":  available,
			})
	}

	now := time.Now().UTC()
	row := models.Reservation{
		ID:         uuid.New(),
		ProductID:  productID,
		OrderID:    orderID,
		CustomerID: customerID,
		Quantity:   qty,
		Status:     enums.ReservationStatusReserved,
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
	}
	if err := repo.Create(ctx, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

// Confirm settles every active hold for the order: the CAS transition
// decides a winner, and only the winner deducts stock. A hold that has
// already expired or been released is skipped silently, which makes
// the call idempotent. A deduction failure after a won CAS means the
// availability invariant was broken somewhere, so the transaction is
// rolled back and the violation surfaced loudly.
func (s *service) Confirm(ctx context.Context, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	active, err := s.repo.FindActiveByOrder(ctx, orderID)
	if err != nil {
		return err
	}

	for _, hold := range active {
		hold := hold
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			won, err := repo.Transition(ctx, hold.ID, enums.ReservationStatusConfirmed, enums.ReservationReasonPaymentConfirmed, nil)
			if err != nil {
				return err
			}
			if !won {
				return nil
			}
			if err := s.ledger.TryDeduct(ctx, tx, hold.ProductID, hold.Quantity, enums.StockMovementConfirm, &hold.OrderID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeConsistencyViolation, err, "confirmed reservation could not deduct stock")
			}
			return nil
		})
		if err != nil {
			if s.logg != nil {
				fields := s.logg.WithOrderID(ctx, hold.OrderID.String())
				fields = s.logg.WithProductID(fields, hold.ProductID.String())
				s.logg.Error(fields, "reservation confirm failed", err)
			}
			return err
		}
	}
	return nil
}

// Release returns every active hold for the order without touching
// stock. Calling it twice, or after the sweeper got there first, is
// harmless: the CAS simply finds nothing left in RESERVED.
func (s *service) Release(ctx context.Context, orderID uuid.UUID, reason enums.ReservationReason) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if reason == "" {
		reason = enums.ReservationReasonCancelled
	}
	if !reason.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid release reason").
			WithDetails(map[string]any{"reason": string(reason)})
	}

	active, err := s.repo.FindActiveByOrder(ctx, orderID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, hold := range active {
		if _, err := s.repo.Transition(ctx, hold.ID, enums.ReservationStatusReleased, reason, &now); err != nil {
			return err
		}
	}
	return nil
}

// AvailableStock returns on-hand stock minus active holds.
func (s *service) AvailableStock(ctx context.Context, productID uuid.UUID) (int, error) {
	onHand, err := s.ledger.Read(ctx, productID)
	if err != nil {
		return 0, err
	}
	reserved, err := s.repo.ActiveQtyByProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	return onHand - reserved, nil
}

// StockStatus returns the full availability picture for the product.
func (s *service) StockStatus(ctx context.Context, productID uuid.UUID) (*StockStatus, error) {
	var product models.Product
	if err := s.repo.db.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": productID.String()})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	reserved, err := s.repo.ActiveQtyByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountActiveByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	available := product.Stock - reserved
	return &StockStatus{
		ProductID:          product.ID,
		ProductName:        product.Name,
		PhysicalStock:      product.Stock,
		ReservedStock:      reserved,
		AvailableStock:     available,
		IsAvailable:        available > 0,
		ActiveReservations: count,
	}, nil
}

// CheckStock reports whether qty units could be reserved right now.
func (s *service) CheckStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	if qty <= 0 {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	available, err := s.AvailableStock(ctx, productID)
	if err != nil {
		return false, err
	}
	return available >= qty, nil
}

// CheckStockBulk answers CheckStock for several products at once.
// Unknown products simply report false.
func (s *service) CheckStockBulk(ctx context.Context, wanted map[uuid.UUID]int) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool, len(wanted))
	for productID, qty := range wanted {
		ok, err := s.CheckStock(ctx, productID, qty)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
				result[productID] = false
				continue
			}
			return nil, err
		}
		result[productID] = ok
	}
	return result, nil
}

// ExpireStale sweeps holds whose expiry has passed. Each row gets its
// own CAS so a concurrent confirm or release always beats the sweeper
// cleanly; per-row failures are aggregated and the sweep keeps going.
func (s *service) ExpireStale(ctx context.Context) (SweepResult, error) {
	now := time.Now().UTC()
	stale, err := s.repo.FindExpired(ctx, now, s.sweepBatch)
	if err != nil {
		return SweepResult{}, err
	}

	result := SweepResult{Scanned: len(stale)}
	var errs error
	for _, hold := range stale {
		won, err := s.repo.Transition(ctx, hold.ID, enums.ReservationStatusExpired, enums.ReservationReasonTimeout, &now)
		if err != nil {
			if s.logg != nil {
				fields := s.logg.WithProductID(ctx, hold.ProductID.String())
				fields = s.logg.WithFields(fields, map[string]any{"reservation_id": hold.ID.String()})
				s.logg.Error(fields, "expire reservation failed", err)
			}
			errs = multierr.Append(errs, err)
			continue
		}
		if won {
			result.Expired++
		}
	}
	return result, errs
}

// FindByOrder lists every reservation ever made for the order.
func (s *service) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Reservation, error) {
	return s.repo.FindByOrder(ctx, orderID)
}

func validateReserveInput(input ReserveInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	return nil
}
