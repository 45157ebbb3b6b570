package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/billing"
	"github.com/shopbill/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// InvoiceResponse represents an invoice with its lines in API responses
type InvoiceResponse struct {
	ID              uuid.UUID             `json:"id"`
	TenantID        uuid.UUID             `json:"tenant_id"`
	InvoiceNumber   string                `json:"invoice_number"`
	CustomerID      uuid.UUID             `json:"customer_id"`
	Status          string                `json:"status"`
	EffectiveStatus string                `json:"effective_status"`
	InvoiceDate     string                `json:"invoice_date"`
	DueDate         string                `json:"due_date"`
	PaidDate        *string               `json:"paid_date,omitempty"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	TaxAmount       decimal.Decimal       `json:"tax_amount"`
	DiscountAmount  decimal.Decimal       `json:"discount_amount"`
	TotalAmount     decimal.Decimal       `json:"total_amount"`
	PaidAmount      decimal.Decimal       `json:"paid_amount"`
	RemainingAmount decimal.Decimal       `json:"remaining_amount"`
	StockApplied    bool                  `json:"stock_applied"`
	IsOverdue       bool                  `json:"is_overdue"`
	Notes           string                `json:"notes,omitempty"`
	Terms           string                `json:"terms,omitempty"`
	Items           []InvoiceItemResponse `json:"items"`
	CreatedBy       *uuid.UUID            `json:"created_by,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
	Version         int                   `json:"version"`
}

// InvoiceListItemResponse represents an invoice in list responses
type InvoiceListItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	InvoiceNumber   string          `json:"invoice_number"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	Status          string          `json:"status"`
	EffectiveStatus string          `json:"effective_status"`
	InvoiceDate     string          `json:"invoice_date"`
	DueDate         string          `json:"due_date"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	StockApplied    bool            `json:"stock_applied"`
	CreatedAt       time.Time       `json:"created_at"`
}

// InvoiceItemResponse represents an invoice line in API responses
type InvoiceItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    *uuid.UUID      `json:"product_id,omitempty"`
	Description  string          `json:"description"`
	Quantity     int64           `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	LineTotal    decimal.Decimal `json:"line_total"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	TotalWithTax decimal.Decimal `json:"total_with_tax"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID        uuid.UUID       `json:"id"`
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	PaidAt    time.Time       `json:"paid_at"`
	CreatedBy *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// PaymentResultResponse is returned after a payment has been recorded
type PaymentResultResponse struct {
	Payment PaymentResponse `json:"payment"`
	Invoice InvoiceResponse `json:"invoice"`
}

// InvoiceListFilter represents filter options for invoice list.
// Status accepts any stored status or "overdue".
type InvoiceListFilter struct {
	Search     string     `form:"search"`
	Status     string     `form:"status" binding:"omitempty,oneof=draft sent due partial paid overdue cancelled"`
	CustomerID *uuid.UUID `form:"-"`
	DateFrom   string     `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo     string     `form:"date_to" binding:"omitempty,datetime=2006-01-02"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by" binding:"omitempty,oneof=invoice_number invoice_date due_date total_amount created_at"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CreateInvoiceRequest represents a request to create an invoice
type CreateInvoiceRequest struct {
	CustomerID  uuid.UUID        `json:"customer_id" binding:"required"`
	InvoiceDate string           `json:"invoice_date" binding:"omitempty,datetime=2006-01-02"`
	DueDate     string           `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Discount    *decimal.Decimal `json:"discount_amount" binding:"omitempty,decimal_gte0"`
	Notes       string           `json:"notes"`
	Terms       string           `json:"terms"`
	Items       []AddItemRequest `json:"items" binding:"omitempty,dive"`
}

// UpdateInvoiceRequest represents a request to update invoice header fields
type UpdateInvoiceRequest struct {
	CustomerID *uuid.UUID       `json:"customer_id"`
	Discount   *decimal.Decimal `json:"discount_amount" binding:"omitempty,decimal_gte0"`
	DueDate    *string          `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Notes      *string          `json:"notes"`
	Terms      *string          `json:"terms"`
}

// AddItemRequest represents a request to add an invoice line
type AddItemRequest struct {
	ProductID   *uuid.UUID       `json:"product_id"`
	Description string           `json:"description" binding:"omitempty,max=500"`
	Quantity    int64            `json:"quantity" binding:"required,min=1"`
	UnitPrice   *decimal.Decimal `json:"unit_price" binding:"omitempty,decimal_gte0"`
	TaxRate     *decimal.Decimal `json:"tax_rate" binding:"omitempty,decimal_gte0"`
}

// UpdateItemRequest represents a request to change an invoice line
type UpdateItemRequest struct {
	Description *string          `json:"description" binding:"omitempty,max=500"`
	Quantity    *int64           `json:"quantity" binding:"omitempty,min=1"`
	UnitPrice   *decimal.Decimal `json:"unit_price" binding:"omitempty,decimal_gte0"`
	TaxRate     *decimal.Decimal `json:"tax_rate" binding:"omitempty,decimal_gte0"`
}

// RecordPaymentRequest represents a request to record a payment
type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    string          `json:"method" binding:"omitempty,oneof=cash card upi bank_transfer cheque other"`
	Reference string          `json:"reference" binding:"omitempty,max=100"`
	Notes     string          `json:"notes" binding:"omitempty,max=500"`
	PaidAt    *time.Time      `json:"paid_at"`
}

// MarkPaidRequest represents a request to settle the remaining balance
type MarkPaidRequest struct {
	Method string `json:"method" binding:"omitempty,oneof=cash card upi bank_transfer cheque other"`
}

func (r AddItemRequest) toInput() billing.ItemInput {
	return billing.ItemInput{
		ProductID:   r.ProductID,
		Description: r.Description,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		TaxRate:     r.TaxRate,
	}
}

func (r UpdateItemRequest) toUpdate() billing.ItemUpdate {
	return billing.ItemUpdate{
		Description: r.Description,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		TaxRate:     r.TaxRate,
	}
}

// ToInvoiceResponse converts a domain Invoice to InvoiceResponse.
// now decides whether the invoice is reported as overdue.
func ToInvoiceResponse(inv *billing.Invoice, now time.Time) InvoiceResponse {
	items := make([]InvoiceItemResponse, len(inv.Items))
	for i := range inv.Items {
		items[i] = ToInvoiceItemResponse(&inv.Items[i])
	}

	var paidDate *string
	if inv.PaidDate != nil {
		d := inv.PaidDate.Format(DateLayout)
		paidDate = &d
	}

	return InvoiceResponse{
		ID:              inv.ID,
		TenantID:        inv.TenantID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		Status:          string(inv.Status),
		EffectiveStatus: string(inv.EffectiveStatus(now)),
		InvoiceDate:     inv.InvoiceDate.Format(DateLayout),
		DueDate:         inv.DueDate.Format(DateLayout),
		PaidDate:        paidDate,
		Subtotal:        inv.Subtotal,
		TaxAmount:       inv.TaxAmount,
		DiscountAmount:  inv.DiscountAmount,
		TotalAmount:     inv.TotalAmount,
		PaidAmount:      inv.PaidAmount,
		RemainingAmount: inv.RemainingAmount(),
		StockApplied:    inv.StockApplied,
		IsOverdue:       inv.IsOverdue(now),
		Notes:           inv.Notes,
		Terms:           inv.Terms,
		Items:           items,
		CreatedBy:       inv.CreatedBy,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
		Version:         inv.Version,
	}
}

// ToInvoiceListItemResponse converts a domain Invoice to InvoiceListItemResponse
func ToInvoiceListItemResponse(inv *billing.Invoice, now time.Time) InvoiceListItemResponse {
	return InvoiceListItemResponse{
		ID:              inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		Status:          string(inv.Status),
		EffectiveStatus: string(inv.EffectiveStatus(now)),
		InvoiceDate:     inv.InvoiceDate.Format(DateLayout),
		DueDate:         inv.DueDate.Format(DateLayout),
		TotalAmount:     inv.TotalAmount,
		PaidAmount:      inv.PaidAmount,
		RemainingAmount: inv.RemainingAmount(),
		StockApplied:    inv.StockApplied,
		CreatedAt:       inv.CreatedAt,
	}
}

// ToInvoiceItemResponse converts a domain InvoiceItem to InvoiceItemResponse
func ToInvoiceItemResponse(it *billing.InvoiceItem) InvoiceItemResponse {
	return InvoiceItemResponse{
		ID:           it.ID,
		ProductID:    it.ProductID,
		Description:  it.Description,
		Quantity:     it.Quantity,
		UnitPrice:    it.UnitPrice,
		TaxRate:      it.TaxRate,
		LineTotal:    it.LineTotal(),
		TaxAmount:    it.TaxAmount(),
		TotalWithTax: it.TotalWithTax(),
	}
}

// ToPaymentResponse converts a domain Payment to PaymentResponse
func ToPaymentResponse(p *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID,
		InvoiceID: p.InvoiceID,
		Amount:    p.Amount,
		Method:    string(p.Method),
		Reference: p.Reference,
		Notes:     p.Notes,
		PaidAt:    p.PaidAt,
		CreatedBy: p.CreatedBy,
		CreatedAt: p.CreatedAt,
	}
}

func parseDate(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return nil, shared.NewValidationError("%s must be a date in YYYY-MM-DD format", field)
	}
	return &t, nil
}
