package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/shopbill/backend/internal/application/billing"
	"github.com/shopbill/backend/internal/domain/shared"
)

// InvoiceHandler handles invoice and invoice line endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *billingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *billingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

type invoiceListQuery struct {
	billingapp.InvoiceListFilter
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
}

type invoiceLister func(ctx context.Context, actor shared.Actor, filter billingapp.InvoiceListFilter) ([]billingapp.InvoiceListItemResponse, int64, error)

type invoiceTransition func(ctx context.Context, actor shared.Actor, invoiceID uuid.UUID) (*billingapp.InvoiceResponse, error)

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req billingapp.CreateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// GetByID handles GET /invoices/:id
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// List handles GET /invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	h.list(c, h.invoiceService.List)
}

// ListPending handles GET /invoices/pending: unpaid, uncancelled invoices
func (h *InvoiceHandler) ListPending(c *gin.Context) {
	h.list(c, h.invoiceService.ListPending)
}

// ListOverdue handles GET /invoices/overdue
func (h *InvoiceHandler) ListOverdue(c *gin.Context) {
	h.list(c, h.invoiceService.ListOverdue)
}

func (h *InvoiceHandler) list(c *gin.Context, lister invoiceLister) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var q invoiceListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter := q.InvoiceListFilter
	filter.CustomerID = optionalUUID(q.CustomerID)

	invoices, total, err := lister(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, invoices, total, filter.Page, filter.PageSize)
}

// Update handles PUT /invoices/:id
func (h *InvoiceHandler) Update(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req billingapp.UpdateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Delete handles DELETE /invoices/:id. Only drafts without payments can be
// deleted.
func (h *InvoiceHandler) Delete(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddItem handles POST /invoices/:id/items
func (h *InvoiceHandler) AddItem(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req billingapp.AddItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.AddItem(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// UpdateItem handles PUT /invoices/:id/items/:item_id
func (h *InvoiceHandler) UpdateItem(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.PathID(c, "item_id")
	if !ok {
		return
	}
	var req billingapp.UpdateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.UpdateItem(c.Request.Context(), actor, id, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// RemoveItem handles DELETE /invoices/:id/items/:item_id and returns the
// recalculated invoice.
func (h *InvoiceHandler) RemoveItem(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.PathID(c, "item_id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.RemoveItem(c.Request.Context(), actor, id, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Send handles POST /invoices/:id/send
func (h *InvoiceHandler) Send(c *gin.Context) {
	h.transition(c, h.invoiceService.Send)
}

// Finalize handles POST /invoices/:id/finalize. Stock is deducted for every
// product line exactly once.
func (h *InvoiceHandler) Finalize(c *gin.Context) {
	h.transition(c, h.invoiceService.Finalize)
}

// Cancel handles POST /invoices/:id/cancel
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	h.transition(c, h.invoiceService.Cancel)
}

func (h *InvoiceHandler) transition(c *gin.Context, fn invoiceTransition) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	invoice, err := fn(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}
