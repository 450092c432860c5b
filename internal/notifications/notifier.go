package notifications

import (
	"context"
	"fmt"

	"github.com/hardlinehq/hardline-backend/pkg/db/models"
	"github.com/hardlinehq/hardline-backend/pkg/logger"
)

// Notifier is told about customer-facing fulfillment events. Delivery
// mechanics (email, SMS, push) live behind this interface.
type Notifier interface {
	OrderDelivered(ctx context.Context, order *models.Order) error
}

type logNotifier struct {
	logg *logger.Logger
}

// NewLogNotifier returns a Notifier that records events on the
// structured log. It stands in until a real delivery channel is wired.
func NewLogNotifier(logg *logger.Logger) (Notifier, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &logNotifier{logg: logg}, nil
}

func (n *logNotifier) OrderDelivered(ctx context.Context, order *models.Order) error {
	fields := n.logg.WithFields(ctx, map[string]any{
		"order_id":       order.ID.String(),
		"customer_email": order.CustomerEmail,
	})
	n.logg.Info(fields, "order delivered notification")
	return nil
}
