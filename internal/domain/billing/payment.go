package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how money was received
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodUPI          PaymentMethod = "upi"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCheque       PaymentMethod = "cheque"
	PaymentMethodOther        PaymentMethod = "other"
)

// IsValid checks if the payment method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodUPI,
		PaymentMethodBankTransfer, PaymentMethodCheque, PaymentMethodOther:
		return true
	}
	return false
}

// MarkPaidReference is the reference stored on payments created by mark-as-paid
const MarkPaidReference = "MARK_PAID"

// Payment is an append-only record of money received against an invoice.
// It is only created together with the matching invoice update.
type Payment struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	InvoiceID uuid.UUID
	Amount    decimal.Decimal
	Method    PaymentMethod
	Reference string
	Notes     string
	CreatedBy *uuid.UUID
	PaidAt    time.Time
	CreatedAt time.Time
}

// PaymentInput carries the caller-provided payment details. PaidAt
// backdates the payment record; nil means now.
type PaymentInput struct {
	Amount    decimal.Decimal
	Method    PaymentMethod
	Reference string
	Notes     string
	PaidAt    *time.Time
}
