package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hardlinehq/hardline-backend/api/responses"
	"github.com/hardlinehq/hardline-backend/api/validators"
	"github.com/hardlinehq/hardline-backend/internal/products"
	pkgerrors "github.com/hardlinehq/hardline-backend/pkg/errors"
	"github.com/hardlinehq/hardline-backend/pkg/logger"
)

type createProductRequest struct {
	SKU          string  `json:"sku" validate:"required,max=64"`
	Name         string  `json:"name" validate:"required,max=255"`
	Description  *string `json:"description" validate:"omitempty,max=2000"`
	Category     string  `json:"category" validate:"omitempty,max=128"`
	UnitPrice    string  `json:"unitPrice" validate:"required"`
	InitialStock int     `json:"initialStock" validate:"min=0"`
	ReorderLevel int     `json:"reorderLevel" validate:"min=0"`
}

// ProductCreate adds a product to the catalog.
func ProductCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		price, err := decimal.NewFromString(req.UnitPrice)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unit price must be a decimal string"))
			return
		}

		product, err := svc.Create(r.Context(), products.CreateProductInput{
			SKU:          req.SKU,
			Name:         req.Name,
			Description:  req.Description,
			Category:     req.Category,
			UnitPrice:    price,
			InitialStock: req.InitialStock,
			ReorderLevel: req.ReorderLevel,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// ProductDetail returns one catalog product.
func ProductDetail(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.GetByID(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ProductList returns the active catalog; ?lowStock=true narrows it to
// products at or under their reorder level.
func ProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.EqualFold(r.URL.Query().Get("lowStock"), "true") {
			listed, err := svc.ListBelowReorderLevel(r.Context())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, listed)
			return
		}
		listed, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listed)
	}
}
