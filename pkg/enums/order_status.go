package enums

import "fmt"

// OrderStatus tracks the fulfillment lifecycle of a customer order.
type OrderStatus string

const (
	OrderStatusPlaced            OrderStatus = "PLACED"
	OrderStatusProcessing        OrderStatus = "PROCESSING"
	OrderStatusPicked            OrderStatus = "PICKED"
	OrderStatusPacked            OrderStatus = "PACKED"
	OrderStatusReadyToDispatch   OrderStatus = "READY_TO_DISPATCH"
	OrderStatusShipped           OrderStatus = "SHIPPED"
	OrderStatusOutForDelivery    OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDeliveryAttempted OrderStatus = "DELIVERY_ATTEMPTED"
	OrderStatusDelivered         OrderStatus = "DELIVERED"
	OrderStatusCancelled         OrderStatus = "CANCELLED"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPlaced,
	OrderStatusProcessing,
	OrderStatusPicked,
	OrderStatusPacked,
	OrderStatusReadyToDispatch,
	OrderStatusShipped,
	OrderStatusOutForDelivery,
	OrderStatusDeliveryAttempted,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
