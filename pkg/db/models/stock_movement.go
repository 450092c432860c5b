package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hardlinehq/hardline-backend/pkg/enums"
)

// StockMovement is an append-only audit row for every on-hand change.
// Quantity is signed, negative for deductions.
type StockMovement struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	ProductID   uuid.UUID               `gorm:"column:product_id;type:uuid;not null;index"`
	Type        enums.StockMovementType `gorm:"column:type;type:text;not null"`
	Quantity    int                     `gorm:"column:quantity;not null"`
	ReferenceID *uuid.UUID              `gorm:"column:reference_id;type:uuid"`
	Note        *string                 `gorm:"column:note"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
}
