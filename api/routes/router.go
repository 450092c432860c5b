package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hardlinehq/hardline-backend/api/controllers"
	"github.com/hardlinehq/hardline-backend/api/middleware"
	"github.com/hardlinehq/hardline-backend/internal/fulfillment"
	"github.com/hardlinehq/hardline-backend/internal/products"
	"github.com/hardlinehq/hardline-backend/internal/receiving"
	"github.com/hardlinehq/hardline-backend/internal/reservation"
	"github.com/hardlinehq/hardline-backend/internal/returns"
	"github.com/hardlinehq/hardline-backend/pkg/config"
	"github.com/hardlinehq/hardline-backend/pkg/enums"
	"github.com/hardlinehq/hardline-backend/pkg/logger"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	Health       map[string]controllers.Pinger
	Reservations reservation.Service
	Orders       fulfillment.Service
	Receipts     receiving.Service
	Returns      returns.Service
	Products     products.Service
}

// NewRouter assembles the back office API.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Health))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/inventory", func(r chi.Router) {
			r.Post("/reserve", controllers.InventoryReserve(deps.Reservations, logg))
			r.Post("/reserve/{orderId}/confirm", controllers.InventoryConfirm(deps.Reservations, logg))
			r.Post("/reserve/{orderId}/release", controllers.InventoryRelease(deps.Reservations, logg))
			r.Get("/available/{productId}", controllers.InventoryAvailable(deps.Reservations, logg))
			r.Get("/status/{productId}", controllers.InventoryStatus(deps.Reservations, logg))
			r.Post("/check", controllers.InventoryCheck(deps.Reservations, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderCreate(deps.Orders, logg))
			r.Get("/", controllers.OrderList(deps.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
			r.Put("/{orderId}/status", controllers.OrderUpdateStatus(deps.Orders, logg))
			r.Post("/{orderId}/pick/start", controllers.OrderFulfillmentStep(deps.Orders, logg, enums.OrderStatusProcessing))
			r.Post("/{orderId}/pick/complete", controllers.OrderFulfillmentStep(deps.Orders, logg, enums.OrderStatusPicked))
			r.Post("/{orderId}/pack/start", controllers.OrderFulfillmentStep(deps.Orders, logg, enums.OrderStatusPacked))
		})

		r.Route("/receipts", func(r chi.Router) {
			r.Post("/", controllers.ReceiptCreate(deps.Receipts, logg))
			r.Get("/", controllers.ReceiptList(deps.Receipts, logg))
			r.Get("/{receiptId}", controllers.ReceiptDetail(deps.Receipts, logg))
		})

		r.Route("/returns", func(r chi.Router) {
			r.Post("/", controllers.ReturnCreate(deps.Returns, logg))
			r.Get("/", controllers.ReturnList(deps.Returns, logg))
			r.Get("/{returnId}", controllers.ReturnDetail(deps.Returns, logg))
			r.Post("/{returnId}/process", controllers.ReturnProcess(deps.Returns, logg))
			r.Post("/{returnId}/cancel", controllers.ReturnCancel(deps.Returns, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.ProductCreate(deps.Products, logg))
			r.Get("/", controllers.ProductList(deps.Products, logg))
			r.Get("/{productId}", controllers.ProductDetail(deps.Products, logg))
		})
	})

	return r
}
