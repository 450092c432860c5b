package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hardlinehq/hardline-backend/pkg/enums"
)

// Reservation is a temporary hold on product stock tied to an order.
// Rows are never deleted; the status moves away from RESERVED exactly
// once and ReleaseReason records why.
type Reservation struct {
	ID            uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	ProductID     uuid.UUID                `gorm:"column:product_id;type:uuid;not null;index"`
	OrderID       uuid.UUID                `gorm:"column:order_id;type:uuid;not null;index"`
	CustomerID    uuid.UUID                `gorm:"column:customer_id;type:uuid;not null"`
	Quantity      int                      `gorm:"column:quantity;not null"`
	Status        enums.ReservationStatus  `gorm:"column:status;type:text;not null;default:'RESERVED';index"`
	ReleaseReason *enums.ReservationReason `gorm:"column:release_reason;type:text"`
	ExpiresAt     time.Time                `gorm:"column:expires_at;not null;index"`
	ReleasedAt    *time.Time               `gorm:"column:released_at"`
	CreatedAt     time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
