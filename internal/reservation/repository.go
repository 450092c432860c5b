package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hardlinehq/hardline-backend/pkg/db/models"
	"github.com/hardlinehq/hardline-backend/pkg/enums"
	pkgerrors "github.com/hardlinehq/hardline-backend/pkg/errors"
)

// Repository persists stock reservations. Rows are append-plus-CAS:
// they are created RESERVED and only ever updated through Transition,
// never deleted.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new RESERVED row.
func (r *Repository) Create(ctx context.Context, reservation *models.Reservation) error {
	if reservation.ID == uuid.Nil {
		reservation.ID = uuid.New()
	}
	if reservation.Status == "" {
		reservation.Status = enums.ReservationStatusReserved
	}
	if err := r.db.WithContext(ctx).Create(reservation).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reservation")
	}
	return nil
}

// FindByOrder returns every reservation for the order, oldest first.
func (r *Repository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Reservation, error) {
	var rows []models.Reservation
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reservations by order")
	}
	return rows, nil
}

// FindActiveByOrder returns the RESERVED rows for the order.
func (r *Repository) FindActiveByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Reservation, error) {
	var rows []models.Reservation
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, enums.ReservationStatusReserved).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list active reservations")
	}
	return rows, nil
}

// ActiveQtyByProduct sums the RESERVED quantity holding stock for the
// product.
func (r *Repository) ActiveQtyByProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("product_id = ? AND status = ?", productID, enums.ReservationStatusReserved).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error; err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum active reservations")
	}
	return int(total), nil
}

// CountActiveByProduct counts the RESERVED rows for the product.
func (r *Repository) CountActiveByProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("product_id = ? AND status = ?", productID, enums.ReservationStatusReserved).
		Count(&count).Error; err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active reservations")
	}
	return int(count), nil
}

// FindExpired returns RESERVED rows whose expiry has passed, oldest
// expiry first.
func (r *Repository) FindExpired(ctx context.Context, cutoff time.Time, limit int) ([]models.Reservation, error) {
	q := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", enums.ReservationStatusReserved, cutoff).
		Order("expires_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []models.Reservation
	if err := q.Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expired reservations")
	}
	return rows, nil
}

// Transition moves the reservation out of RESERVED. The update is
// guarded on the current status so exactly one caller wins a race; the
// return value reports whether this caller did. releasedAt is stamped
// only when the hold is handed back; a confirmed hold keeps it null.
func (r *Repository) Transition(ctx context.Context, id uuid.UUID, to enums.ReservationStatus, reason enums.ReservationReason, releasedAt *time.Time) (bool, error) {
	updates := map[string]any{
		"status":         to,
		"release_reason": reason,
	}
	if releasedAt != nil {
		updates["released_at"] = *releasedAt
	}
	res := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ? AND status = ?", id, enums.ReservationStatusReserved).
		Updates(updates)
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "transition reservation")
	}
	return res.RowsAffected == 1, nil
}
