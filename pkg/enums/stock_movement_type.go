package enums

import "fmt"

// StockMovementType labels a row in the stock movement audit trail.
// CONFIRM and PICK are both deductions; keeping them distinct lets a
// deployment audit whether an order was deducted twice.
type StockMovementType string

const (
	StockMovementConfirm    StockMovementType = "CONFIRM"
	StockMovementPick       StockMovementType = "PICK"
	StockMovementReceipt    StockMovementType = "RECEIPT"
	StockMovementReturn     StockMovementType = "RETURN"
	StockMovementAdjustment StockMovementType = "ADJUSTMENT"
)

var validStockMovementTypes = []StockMovementType{
	StockMovementConfirm,
	StockMovementPick,
	StockMovementReceipt,
	StockMovementReturn,
	StockMovementAdjustment,
}

// String implements fmt.Stringer.
func (s StockMovementType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockMovementType.
func (s StockMovementType) IsValid() bool {
	for _, candidate := range validStockMovementTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockMovementType converts raw input into a StockMovementType.
func ParseStockMovementType(value string) (StockMovementType, error) {
	for _, candidate := range validStockMovementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock movement type %q", value)
}
