package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/shopbill/backend/internal/application/inventory"
)

// StockHandler handles manual stock adjustments and the movement history
type StockHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *inventoryapp.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// Adjust handles POST /products/:id/stock. The mode is one of increase,
// decrease or set; every adjustment writes one movement.
func (h *StockHandler) Adjust(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.stockService.AdjustStock(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListMovements handles GET /products/:id/movements
func (h *StockHandler) ListMovements(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var filter inventoryapp.MovementListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	movements, total, err := h.stockService.ListMovements(c.Request.Context(), actor, id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, movements, total, filter.Page, filter.PageSize)
}

// ListLowStock handles GET /products/low-stock
func (h *StockHandler) ListLowStock(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var q productListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	products, total, err := h.stockService.ListLowStock(c.Request.Context(), actor, q.filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, q.Page, q.PageSize)
}
