package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/hardlinehq/hardline-backend/api/responses"
	"github.com/hardlinehq/hardline-backend/api/validators"
	"github.com/hardlinehq/hardline-backend/internal/receiving"
	"github.com/hardlinehq/hardline-backend/pkg/db/models"
	"github.com/hardlinehq/hardline-backend/pkg/enums"
	pkgerrors "github.com/hardlinehq/hardline-backend/pkg/errors"
	"github.com/hardlinehq/hardline-backend/pkg/logger"
)

type receiptLineRequest struct {
	ProductID   uuid.UUID `json:"productId" validate:"required"`
	OrderedQty  int       `json:"orderedQty" validate:"required,min=1"`
	ReceivedQty int       `json:"receivedQty" validate:"min=0"`
	Condition   string    `json:"condition" validate:"omitempty"`
}

type createReceiptRequest struct {
	PurchaseOrderID uuid.UUID            `json:"purchaseOrderId" validate:"required"`
	SupplierID      uuid.UUID            `json:"supplierId" validate:"required"`
	ReceivedBy      string               `json:"receivedBy" validate:"required"`
	Notes           *string              `json:"notes" validate:"omitempty,max=2000"`
	Lines           []receiptLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ReceiptCreate books an inbound delivery and restocks its lines.
func ReceiptCreate(svc receiving.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createReceiptRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := make([]receiving.ReceiptLine, 0, len(req.Lines))
		for _, line := range req.Lines {
			lines = append(lines, receiving.ReceiptLine{
				ProductID:   line.ProductID,
				OrderedQty:  line.OrderedQty,
				ReceivedQty: line.ReceivedQty,
				Condition:   enums.ItemCondition(strings.ToUpper(strings.TrimSpace(line.Condition))),
			})
		}

		receipt, err := svc.CreateGoodsReceipt(r.Context(), receiving.CreateReceiptInput{
			PurchaseOrderID: req.PurchaseOrderID,
			SupplierID:      req.SupplierID,
			ReceivedBy:      req.ReceivedBy,
			Notes:           req.Notes,
			Lines:           lines,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}

// ReceiptDetail returns one goods receipt note with its lines.
func ReceiptDetail(svc receiving.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		receiptID, err := validators.ParseUUIDParam(r, "receiptId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		receipt, err := svc.GetByID(r.Context(), receiptID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, receipt)
	}
}

// ReceiptList returns receipts, filtered by ?supplierId= or ?status=.
func ReceiptList(svc receiving.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		supplierID, err := validators.ParseUUIDQuery(r, "supplierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var receipts []models.GoodsReceiptNote
		rawStatus := strings.TrimSpace(r.URL.Query().Get("status"))
		switch {
		case supplierID != uuid.Nil:
			receipts, err = svc.ListBySupplier(r.Context(), supplierID)
		case rawStatus != "":
			var status enums.GoodsReceiptStatus
			status, err = enums.ParseGoodsReceiptStatus(strings.ToUpper(rawStatus))
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			receipts, err = svc.ListByStatus(r.Context(), status)
		default:
			receipts, err = svc.List(r.Context())
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, receipts)
	}
}
