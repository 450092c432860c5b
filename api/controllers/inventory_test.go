package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hardlinehq/hardline-backend/internal/reservation"
	"github.com/hardlinehq/hardline-backend/pkg/db/models"
	"github.com/hardlinehq/hardline-backend/pkg/enums"
	pkgerrors "github.com/hardlinehq/hardline-backend/pkg/errors"
)

type stubReservations struct {
	reserveFn   func(ctx context.Context, input reservation.ReserveInput) (*models.Reservation, error)
	confirmFn   func(ctx context.Context, orderID uuid.UUID) error
	releaseFn   func(ctx context.Context, orderID uuid.UUID, reason enums.ReservationReason) error
	availableFn func(ctx context.Context, productID uuid.UUID) (int, error)
	statusFn    func(ctx context.Context, productID uuid.UUID) (*reservation.StockStatus, error)
	checkBulkFn func(ctx context.Context, wanted map[uuid.UUID]int) (map[uuid.UUID]bool, error)
}

func (s stubReservations) Reserve(ctx context.Context, input reservation.ReserveInput) (*models.Reservation, error) {
	if s.reserveFn != nil {
		return s.reserveFn(ctx, input)
	}
	return &models.Reservation{}, nil
}

func (s stubReservations) ReserveAll(ctx context.Context, orderID, customerID uuid.UUID, items []reservation.ReserveItem, ttl time.Duration) ([]models.Reservation, error) {
	return nil, nil
}

func (s stubReservations) Confirm(ctx context.Context, orderID uuid.UUID) error {
	if s.confirmFn != nil {
		return s.confirmFn(ctx, orderID)
	}
	return nil
}

func (s stubReservations) Release(ctx context.Context, orderID uuid.UUID, reason enums.ReservationReason) error {
	if s.releaseFn != nil {
		return s.releaseFn(ctx, orderID, reason)
	}
	return nil
}

func (s stubReservations) AvailableStock(ctx context.Context, productID uuid.UUID) (int, error) {
	if s.availableFn != nil {
		return s.availableFn(ctx, productID)
	}
	return 0, nil
}

func (s stubReservations) StockStatus(ctx context.Context, productID uuid.UUID) (*reservation.StockStatus, error) {
	if s.statusFn != nil {
		return s.statusFn(ctx, productID)
	}
	return &reservation.StockStatus{}, nil
}

func (s stubReservations) CheckStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	return false, nil
}

func (s stubReservations) CheckStockBulk(ctx context.Context, wanted map[uuid.UUID]int) (map[uuid.UUID]bool, error) {
	if s.checkBulkFn != nil {
		return s.checkBulkFn(ctx, wanted)
	}
	return map[uuid.UUID]bool{}, nil
}

func (s stubReservations) ExpireStale(ctx context.Context) (reservation.SweepResult, error) {
	return reservation.SweepResult{}, nil
}

func (s stubReservations) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Reservation, error) {
	return nil, nil
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestInventoryReserveCreatesHold(t *testing.T) {
	orderID := uuid.New()
	productID := uuid.New()
	customerID := uuid.New()

	svc := stubReservations{
		reserveFn: func(ctx context.Context, input reservation.ReserveInput) (*models.Reservation, error) {
			if input.Qty != 3 {
				t.Fatalf("unexpected qty %d", input.Qty)
			}
			if input.TTL != 30*time.Minute {
				t.Fatalf("unexpected ttl %s", input.TTL)
			}
			return &models.Reservation{
				ID:        uuid.New(),
				OrderID:   input.OrderID,
				ProductID: input.ProductID,
				Quantity:  input.Qty,
				Status:    enums.ReservationStatusReserved,
			}, nil
		},
	}

	body := fmt.Sprintf(`{"orderId":%q,"productId":%q,"customerId":%q,"quantity":3,"expiryMinutes":30}`,
		orderID, productID, customerID)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	resp := httptest.NewRecorder()
	InventoryReserve(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data models.Reservation `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderID != orderID || envelope.Data.Quantity != 3 {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestInventoryReserveRejectsMissingFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"quantity":0}`))
	resp := httptest.NewRecorder()
	InventoryReserve(stubReservations{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected error code %q", envelope.Error.Code)
	}
}

func TestInventoryReserveSurfacesShortStock(t *testing.T) {
	svc := stubReservations{
		reserveFn: func(ctx context.Context, input reservation.ReserveInput) (*models.Reservation, error) {
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
				WithDetails(map[string]any{"available": 1, "requested": input.Qty})
		},
	}

	body := fmt.Sprintf(`{"orderId":%q,"productId":%q,"customerId":%q,"quantity":5}`,
		uuid.New(), uuid.New(), uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	resp := httptest.NewRecorder()
	InventoryReserve(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeInsufficientStock) {
		t.Fatalf("unexpected error code %q", envelope.Error.Code)
	}
	if envelope.Error.Details["available"] != float64(1) {
		t.Fatalf("expected availability in details, got %v", envelope.Error.Details)
	}
}

func TestInventoryConfirm(t *testing.T) {
	orderID := uuid.New()
	confirmed := false
	svc := stubReservations{
		confirmFn: func(ctx context.Context, id uuid.UUID) error {
			if id != orderID {
				t.Fatalf("unexpected order id %s", id)
			}
			confirmed = true
			return nil
		},
	}

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/", nil), "orderId", orderID.String())
	resp := httptest.NewRecorder()
	InventoryConfirm(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if !confirmed {
		t.Fatal("expected service confirm call")
	}
}

func TestInventoryConfirmRejectsBadOrderID(t *testing.T) {
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/", nil), "orderId", "not-a-uuid")
	resp := httptest.NewRecorder()
	InventoryConfirm(stubReservations{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestInventoryReleasePassesReason(t *testing.T) {
	orderID := uuid.New()
	var got enums.ReservationReason
	svc := stubReservations{
		releaseFn: func(ctx context.Context, id uuid.UUID, reason enums.ReservationReason) error {
			got = reason
			return nil
		},
	}

	req := withURLParam(
		httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"reason":"CANCELLED"}`)),
		"orderId", orderID.String(),
	)
	resp := httptest.NewRecorder()
	InventoryRelease(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if got != enums.ReservationReasonCancelled {
		t.Fatalf("unexpected reason %q", got)
	}
}

func TestInventoryReleaseWithoutBody(t *testing.T) {
	svc := stubReservations{
		releaseFn: func(ctx context.Context, id uuid.UUID, reason enums.ReservationReason) error {
			if reason != "" {
				t.Fatalf("expected empty reason, got %q", reason)
			}
			return nil
		},
	}

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/", nil), "orderId", uuid.NewString())
	resp := httptest.NewRecorder()
	InventoryRelease(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestInventoryAvailable(t *testing.T) {
	productID := uuid.New()
	svc := stubReservations{
		availableFn: func(ctx context.Context, id uuid.UUID) (int, error) {
			if id != productID {
				t.Fatalf("unexpected product id %s", id)
			}
			return 7, nil
		},
	}

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "productId", productID.String())
	resp := httptest.NewRecorder()
	InventoryAvailable(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data struct {
			AvailableStock int `json:"availableStock"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AvailableStock != 7 {
		t.Fatalf("unexpected availability %d", envelope.Data.AvailableStock)
	}
}

func TestInventoryStatusNotFound(t *testing.T) {
	svc := stubReservations{
		statusFn: func(ctx context.Context, id uuid.UUID) (*reservation.StockStatus, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		},
	}

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "productId", uuid.NewString())
	resp := httptest.NewRecorder()
	InventoryStatus(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestInventoryCheckRejectsNonPositiveQuantity(t *testing.T) {
	body := fmt.Sprintf(`{"items":{%q:0}}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	resp := httptest.NewRecorder()
	InventoryCheck(stubReservations{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestInventoryCheckReportsPerProduct(t *testing.T) {
	okID := uuid.New()
	shortID := uuid.New()
	svc := stubReservations{
		checkBulkFn: func(ctx context.Context, wanted map[uuid.UUID]int) (map[uuid.UUID]bool, error) {
			if len(wanted) != 2 {
				t.Fatalf("unexpected request size %d", len(wanted))
			}
			return map[uuid.UUID]bool{okID: true, shortID: false}, nil
		},
	}

	body := fmt.Sprintf(`{"items":{%q:2,%q:50}}`, okID, shortID)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	resp := httptest.NewRecorder()
	InventoryCheck(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data map[uuid.UUID]bool `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data[okID] || envelope.Data[shortID] {
		t.Fatalf("unexpected result %v", envelope.Data)
	}
}
