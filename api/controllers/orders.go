package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/hardlinehq/hardline-backend/api/responses"
	"github.com/hardlinehq/hardline-backend/api/validators"
	"github.com/hardlinehq/hardline-backend/internal/fulfillment"
	"github.com/hardlinehq/hardline-backend/pkg/db/models"
	"github.com/hardlinehq/hardline-backend/pkg/enums"
	pkgerrors "github.com/hardlinehq/hardline-backend/pkg/errors"
	"github.com/hardlinehq/hardline-backend/pkg/logger"
)

type orderLineRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type createOrderRequest struct {
	CustomerID    uuid.UUID          `json:"customerId" validate:"required"`
	CustomerEmail string             `json:"customerEmail" validate:"required,email"`
	Items         []orderLineRequest `json:"items" validate:"required,min=1,dive"`
	Notes         *string            `json:"notes" validate:"omitempty,max=2000"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderCreate places a new order, reserving stock for every line.
func OrderCreate(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := make([]fulfillment.OrderLine, 0, len(req.Items))
		for _, item := range req.Items {
			lines = append(lines, fulfillment.OrderLine{ProductID: item.ProductID, Qty: item.Quantity})
		}

		order, err := svc.CreateOrder(r.Context(), fulfillment.CreateOrderInput{
			CustomerID:    req.CustomerID,
			CustomerEmail: req.CustomerEmail,
			Items:         lines,
			Notes:         req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrderDetail returns one order with its items.
func OrderDetail(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.GetByID(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderList returns orders filtered by ?status=, ?customerId=, or the
// pending set when no filter is given.
func OrderList(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := validators.ParseUUIDQuery(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var orders []models.Order
		rawStatus := strings.TrimSpace(r.URL.Query().Get("status"))
		switch {
		case customerID != uuid.Nil:
			orders, err = svc.ListByCustomer(r.Context(), customerID)
		case rawStatus == "" || strings.EqualFold(rawStatus, "pending"):
			orders, err = svc.ListPending(r.Context())
		default:
			var status enums.OrderStatus
			status, err = enums.ParseOrderStatus(rawStatus)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			orders, err = svc.ListByStatus(r.Context(), status)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

// OrderUpdateStatus moves an order through the fulfillment pipeline.
func OrderUpdateStatus(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		order, err := svc.UpdateStatus(r.Context(), orderID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderFulfillmentStep is the warehouse shorthand for status moves:
// pick/start, pick/complete, and pack/start map onto the state machine.
func OrderFulfillmentStep(svc fulfillment.Service, logg *logger.Logger, target enums.OrderStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.UpdateStatus(r.Context(), orderID, target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
