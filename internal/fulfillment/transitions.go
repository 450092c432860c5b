package fulfillment

import (
	"github.com/hardlinehq/hardline-backend/pkg/enums"
	pkgerrors "github.com/hardlinehq/hardline-backend/pkg/errors"
)

// transitions is the closed set of legal status moves. Anything not
// listed here is rejected before any side effect runs.
var transitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPlaced:            {enums.OrderStatusProcessing, enums.OrderStatusCancelled},
	enums.OrderStatusProcessing:        {enums.OrderStatusPicked, enums.OrderStatusCancelled},
	enums.OrderStatusPicked:            {enums.OrderStatusPacked},
	enums.OrderStatusPacked:            {enums.OrderStatusReadyToDispatch},
	enums.OrderStatusReadyToDispatch:   {enums.OrderStatusShipped},
	enums.OrderStatusShipped:           {enums.OrderStatusOutForDelivery},
	enums.OrderStatusOutForDelivery:    {enums.OrderStatusDelivered, enums.OrderStatusDeliveryAttempted},
	enums.OrderStatusDeliveryAttempted: {enums.OrderStatusOutForDelivery, enums.OrderStatusDelivered},
}

// CanTransition reports whether from may move to target.
func CanTransition(from, target enums.OrderStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == target {
			return true
		}
	}
	return false
}

// NextStatuses lists the statuses reachable from the given one.
func NextStatuses(from enums.OrderStatus) []enums.OrderStatus {
	allowed := transitions[from]
	out := make([]enums.OrderStatus, len(allowed))
	copy(out, allowed)
	return out
}

func invalidTransition(from, target enums.OrderStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "invalid order status transition").
		WithDetails(map[string]any{
			"current": string(from),
			"target":  string(target),
		})
}
