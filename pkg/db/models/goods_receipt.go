package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hardlinehq/hardline-backend/pkg/enums"
)

// GoodsReceiptNote records one inbound delivery against a purchase
// order. Status is derived from the per-line counts and conditions at
// creation and never changes afterwards.
type GoodsReceiptNote struct {
	ID              uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	PurchaseOrderID uuid.UUID                `gorm:"column:purchase_order_id;type:uuid;not null;index"`
	SupplierID      uuid.UUID                `gorm:"column:supplier_id;type:uuid;not null;index"`
	Status          enums.GoodsReceiptStatus `gorm:"column:status;type:text;not null;index"`
	ReceivedBy      string                   `gorm:"column:received_by;not null"`
	Notes           *string                  `gorm:"column:notes"`
	Items           []GoodsReceiptItem       `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE"`
	ReceivedAt      time.Time                `gorm:"column:received_at;not null"`
	CreatedAt       time.Time                `gorm:"column:created_at;autoCreateTime"`
}

// GoodsReceiptItem is one product line on a goods receipt note.
// ProductName is stamped at creation.
type GoodsReceiptItem struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	ReceiptID   uuid.UUID           `gorm:"column:receipt_id;type:uuid;not null;index"`
	ProductID   uuid.UUID           `gorm:"column:product_id;type:uuid;not null"`
	ProductName string              `gorm:"column:product_name;not null"`
	OrderedQty  int                 `gorm:"column:ordered_qty;not null"`
	ReceivedQty int                 `gorm:"column:received_qty;not null"`
	Condition   enums.ItemCondition `gorm:"column:condition;type:text;not null;default:'GOOD'"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
}
