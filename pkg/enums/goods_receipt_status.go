package enums

import "fmt"

// GoodsReceiptStatus classifies a goods receipt note against its
// purchase order. COMPLETED means every line matched, PARTIAL means
// at least one short delivery, DISCREPANCY means damaged or excess
// quantities were recorded.
type GoodsReceiptStatus string

const (
	GoodsReceiptStatusCompleted   GoodsReceiptStatus = "COMPLETED"
	GoodsReceiptStatusPartial     GoodsReceiptStatus = "PARTIAL"
	GoodsReceiptStatusDiscrepancy GoodsReceiptStatus = "DISCREPANCY"
)

var validGoodsReceiptStatuses = []GoodsReceiptStatus{
	GoodsReceiptStatusCompleted,
	GoodsReceiptStatusPartial,
	GoodsReceiptStatusDiscrepancy,
}

// String implements fmt.Stringer.
func (g GoodsReceiptStatus) String() string {
	return string(g)
}

// IsValid reports whether the value is a known GoodsReceiptStatus.
func (g GoodsReceiptStatus) IsValid() bool {
	for _, candidate := range validGoodsReceiptStatuses {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseGoodsReceiptStatus converts raw input into a GoodsReceiptStatus.
func ParseGoodsReceiptStatus(value string) (GoodsReceiptStatus, error) {
	for _, candidate := range validGoodsReceiptStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid goods receipt status %q", value)
}
