package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/hardlinehq/hardline-backend/api/responses"
	"github.com/hardlinehq/hardline-backend/api/validators"
	"github.com/hardlinehq/hardline-backend/internal/returns"
	"github.com/hardlinehq/hardline-backend/pkg/db/models"
	"github.com/hardlinehq/hardline-backend/pkg/enums"
	pkgerrors "github.com/hardlinehq/hardline-backend/pkg/errors"
	"github.com/hardlinehq/hardline-backend/pkg/logger"
)

type returnLineRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type createReturnRequest struct {
	OrderID uuid.UUID           `json:"orderId" validate:"required"`
	Reason  string              `json:"reason" validate:"required,max=2000"`
	Items   []returnLineRequest `json:"items" validate:"required,min=1,dive"`
}

type processReturnRequest struct {
	Status      string `json:"status" validate:"required"`
	ProcessedBy string `json:"processedBy" validate:"required"`
}

// ReturnCreate opens a return for a delivered order.
func ReturnCreate(svc returns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createReturnRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := make([]returns.ReturnLine, 0, len(req.Items))
		for _, item := range req.Items {
			lines = append(lines, returns.ReturnLine{ProductID: item.ProductID, Qty: item.Quantity})
		}

		request, err := svc.Create(r.Context(), returns.CreateReturnInput{
			OrderID: req.OrderID,
			Reason:  req.Reason,
			Items:   lines,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, request)
	}
}

// ReturnDetail returns one return request with its lines.
func ReturnDetail(svc returns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		returnID, err := validators.ParseUUIDParam(r, "returnId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		request, err := svc.GetByID(r.Context(), returnID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

// ReturnList returns requests filtered by ?status= or the pending set.
func ReturnList(svc returns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var requests []models.ReturnExchange
		var err error

		rawStatus := strings.TrimSpace(r.URL.Query().Get("status"))
		switch {
		case strings.EqualFold(rawStatus, "pending"):
			requests, err = svc.ListPending(r.Context())
		case rawStatus != "":
			var status enums.ReturnStatus
			status, err = enums.ParseReturnStatus(strings.ToUpper(rawStatus))
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			requests, err = svc.ListByStatus(r.Context(), status)
		default:
			requests, err = svc.List(r.Context())
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, requests)
	}
}

// ReturnProcess moves a return request to its next status.
func ReturnProcess(svc returns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		returnID, err := validators.ParseUUIDParam(r, "returnId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req processReturnRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseReturnStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid return status"))
			return
		}

		request, err := svc.Process(r.Context(), returnID, status, req.ProcessedBy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

// ReturnCancel withdraws a return request.
func ReturnCancel(svc returns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		returnID, err := validators.ParseUUIDParam(r, "returnId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		request, err := svc.Cancel(r.Context(), returnID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}
