package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopbill/backend/internal/interfaces/http/handler"
	"github.com/shopbill/backend/internal/interfaces/http/middleware"
)

// Handlers bundles the API handlers mounted by RegisterAPI
type Handlers struct {
	Product  *handler.ProductHandler
	Stock    *handler.StockHandler
	Category *handler.CategoryHandler
	Customer *handler.CustomerHandler
	Invoice  *handler.InvoiceHandler
	Payment  *handler.PaymentHandler
	Health   *handler.HealthHandler
}

// RouteConfig holds the per-route guards of the API
type RouteConfig struct {
	// Idempotency guards the payment endpoints. Nil disables the guard.
	Idempotency gin.HandlerFunc
	// Metrics serves /metrics. Nil leaves the endpoint unmounted.
	Metrics http.Handler
}

// RegisterAPI mounts the operational endpoints on the engine and registers
// every resource group on r. Call r.Setup afterwards.
func RegisterAPI(engine *gin.Engine, r *Router, h Handlers, cfg RouteConfig) {
	engine.GET("/health", h.Health.Health)
	if cfg.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(cfg.Metrics))
	}
	engine.NoRoute(middleware.NoRoute())

	manager := middleware.RequireManager()
	idempotent := func(next gin.HandlerFunc) []gin.HandlerFunc {
		if cfg.Idempotency == nil {
			return []gin.HandlerFunc{next}
		}
		return []gin.HandlerFunc{cfg.Idempotency, next}
	}

	products := NewResource("/products").
		GET("/low-stock", h.Stock.ListLowStock).
		POST("", h.Product.Create).
		GET("", h.Product.List).
		GET("/:id", h.Product.GetByID).
		PUT("/:id", h.Product.Update).
		DELETE("/:id", manager, h.Product.Delete).
		POST("/:id/stock", h.Stock.Adjust).
		GET("/:id/movements", h.Stock.ListMovements)

	categories := NewResource("/categories").
		POST("", h.Category.Create).
		GET("", h.Category.List).
		GET("/:id", h.Category.GetByID).
		PUT("/:id", h.Category.Update).
		DELETE("/:id", manager, h.Category.Delete)

	customers := NewResource("/customers").
		POST("", h.Customer.Create).
		GET("", h.Customer.List).
		GET("/:id", h.Customer.GetByID).
		PUT("/:id", h.Customer.Update).
		DELETE("/:id", manager, h.Customer.Delete)

	invoices := NewResource("/invoices").
		GET("/pending", h.Invoice.ListPending).
		GET("/overdue", h.Invoice.ListOverdue).
		POST("", h.Invoice.Create).
		GET("", h.Invoice.List).
		GET("/:id", h.Invoice.GetByID).
		PUT("/:id", h.Invoice.Update).
		DELETE("/:id", manager, h.Invoice.Delete).
		POST("/:id/items", h.Invoice.AddItem).
		PUT("/:id/items/:item_id", h.Invoice.UpdateItem).
		DELETE("/:id/items/:item_id", h.Invoice.RemoveItem).
		POST("/:id/send", h.Invoice.Send).
		POST("/:id/finalize", h.Invoice.Finalize).
		POST("/:id/cancel", manager, h.Invoice.Cancel).
		POST("/:id/payments", idempotent(h.Payment.RecordPayment)...).
		GET("/:id/payments", h.Payment.ListPayments).
		POST("/:id/mark-paid", idempotent(h.Payment.MarkPaid)...)

	system := NewResource("/system").
		GET("/info", h.Health.Info)

	r.Register(products, categories, customers, invoices, system)
}
