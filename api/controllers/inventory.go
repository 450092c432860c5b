package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hardlinehq/hardline-backend/api/responses"
	"github.com/hardlinehq/hardline-backend/api/validators"
	"github.com/hardlinehq/hardline-backend/internal/reservation"
	"github.com/hardlinehq/hardline-backend/pkg/enums"
	pkgerrors "github.com/hardlinehq/hardline-backend/pkg/errors"
	"github.com/hardlinehq/hardline-backend/pkg/logger"
)

type reserveRequest struct {
	OrderID       uuid.UUID `json:"orderId" validate:"required"`
	ProductID     uuid.UUID `json:"productId" validate:"required"`
	CustomerID    uuid.UUID `json:"customerId" validate:"required"`
	Quantity      int       `json:"quantity" validate:"required,min=1"`
	ExpiryMinutes int       `json:"expiryMinutes" validate:"omitempty,min=1,max=1440"`
}

type releaseRequest struct {
	Reason string `json:"reason" validate:"omitempty"`
}

type checkStockRequest struct {
	Items map[uuid.UUID]int `json:"items" validate:"required,min=1"`
}

// InventoryReserve places a stock hold for one order line.
func InventoryReserve(svc reservation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reserveRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		hold, err := svc.Reserve(r.Context(), reservation.ReserveInput{
			OrderID:    req.OrderID,
			CustomerID: req.CustomerID,
			ProductID:  req.ProductID,
			Qty:        req.Quantity,
			TTL:        time.Duration(req.ExpiryMinutes) * time.Minute,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, hold)
	}
}

// InventoryConfirm settles every active hold for the order.
func InventoryConfirm(svc reservation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Confirm(r.Context(), orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"orderId": orderID, "confirmed": true})
	}
}

// InventoryRelease hands every active hold for the order back.
func InventoryRelease(svc reservation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req releaseRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		if err := svc.Release(r.Context(), orderID, enums.ReservationReason(req.Reason)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"orderId": orderID, "released": true})
	}
}

// InventoryAvailable reports how many units can still be reserved.
func InventoryAvailable(svc reservation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		available, err := svc.AvailableStock(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"productId":      productID,
			"availableStock": available,
		})
	}
}

// InventoryStatus reports the full availability picture for a product.
func InventoryStatus(svc reservation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := svc.StockStatus(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

// InventoryCheck answers reservability for a batch of product lines.
func InventoryCheck(svc reservation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkStockRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		for _, qty := range req.Items {
			if qty <= 0 {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive"))
				return
			}
		}
		result, err := svc.CheckStockBulk(r.Context(), req.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
