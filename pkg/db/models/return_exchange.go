package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hardlinehq/hardline-backend/pkg/enums"
)

// ReturnExchange is a customer return or exchange request for a
// delivered order. At most one request per order may be active.
type ReturnExchange struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	OrderID      uuid.UUID          `gorm:"column:order_id;type:uuid;not null;index"`
	CustomerID   uuid.UUID          `gorm:"column:customer_id;type:uuid;not null;index"`
	Status       enums.ReturnStatus `gorm:"column:status;type:text;not null;default:'PENDING';index"`
	Reason       string             `gorm:"column:reason;not null"`
	RefundAmount decimal.Decimal    `gorm:"column:refund_amount;type:numeric(12,2);not null"`
	ProcessedBy  *string            `gorm:"column:processed_by"`
	Items        []ReturnItem       `gorm:"foreignKey:ReturnID;constraint:OnDelete:CASCADE"`
	CompletedAt  *time.Time         `gorm:"column:completed_at"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// ReturnItem is one product line on a return request.
type ReturnItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ReturnID  uuid.UUID       `gorm:"column:return_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
