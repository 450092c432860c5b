package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the canonical catalog row. Stock is the on-hand count and
// only the stock ledger mutates it; Available is maintained alongside
// every stock write. The sellable quantity is Stock minus the sum of
// active reservations.
type Product struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SKU          string          `gorm:"column:sku;not null;uniqueIndex"`
	Name         string          `gorm:"column:name;not null"`
	Description  *string         `gorm:"column:description"`
	Category     string          `gorm:"column:category;not null"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Stock        int             `gorm:"column:stock;not null;default:0"`
	Available    bool            `gorm:"column:available;not null;default:false"`
	ReorderLevel int             `gorm:"column:reorder_level;not null;default:0"`
	IsActive     bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
