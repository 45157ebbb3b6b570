package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/shared"
	"github.com/shopbill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DefaultDueDays is the payment term applied when no due date is given
const DefaultDueDays = 30

// Invoice is the aggregate root for billing a customer.
//
// Invariants kept by every method:
//   - TotalAmount = Subtotal + TaxAmount - DiscountAmount
//   - 0 <= PaidAmount <= TotalAmount
//   - once StockApplied is set, items, discount and customer are frozen
type Invoice struct {
	shared.TenantAggregateRoot
	InvoiceNumber  string
	CustomerID     uuid.UUID
	Status         InvoiceStatus
	InvoiceDate    time.Time
	DueDate        time.Time
	PaidDate       *time.Time
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	PaidAmount     decimal.Decimal
	StockApplied   bool
	Notes          string
	Terms          string
	Items          []InvoiceItem
}

// NewInvoice creates an empty draft invoice. invoiceDate is truncated to a
// calendar day; a nil dueDate defaults to invoiceDate plus dueDays.
func NewInvoice(actor shared.Actor, customerID uuid.UUID, invoiceDate time.Time, dueDate *time.Time, dueDays int) (*Invoice, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("customer is required")
	}
	if dueDays <= 0 {
		dueDays = DefaultDueDays
	}

	invoiceDate = shared.Today(invoiceDate)
	due := invoiceDate.AddDate(0, 0, dueDays)
	if dueDate != nil {
		due = shared.Today(*dueDate)
	}
	if due.Before(invoiceDate) {
		return nil, shared.NewValidationError("due date cannot be before invoice date")
	}

	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRootFor(actor),
		CustomerID:          customerID,
		Status:              InvoiceStatusDraft,
		InvoiceDate:         invoiceDate,
		DueDate:             due,
		Subtotal:            decimal.Zero,
		TaxAmount:           decimal.Zero,
		DiscountAmount:      decimal.Zero,
		TotalAmount:         decimal.Zero,
		PaidAmount:          decimal.Zero,
		Items:               make([]InvoiceItem, 0),
	}
	return inv, nil
}

// AssignNumber sets the allocated invoice number. A number is assigned once.
func (i *Invoice) AssignNumber(number string) error {
	if i.InvoiceNumber != "" {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("invoice already numbered %s", i.InvoiceNumber))
	}
	if strings.TrimSpace(number) == "" {
		return shared.NewValidationError("invoice number cannot be empty")
	}
	i.InvoiceNumber = number
	i.AddDomainEvent(NewInvoiceCreatedEvent(i))
	return nil
}

// AddItem adds a line, or increments the quantity of the existing line for
// the same product. product must be given when in.ProductID is set.
func (i *Invoice) AddItem(in ItemInput, product *ProductSnapshot) (*InvoiceItem, error) {
	if err := i.ensureItemsEditable(); err != nil {
		return nil, err
	}
	if err := valueobject.ValidateLineQuantity(in.Quantity); err != nil {
		return nil, shared.NewValidationError("%s", err.Error())
	}

	if in.ProductID != nil {
		if product == nil || product.ID != *in.ProductID {
			return nil, shared.NewNotFoundError("product")
		}
		if idx := i.itemIndexByProduct(product.ID); idx >= 0 {
			var added *InvoiceItem
			err := i.mutateItems(func() error {
				it := &i.Items[idx]
				it.Quantity += in.Quantity
				it.UpdatedAt = time.Now()
				added = it
				return nil
			})
			if err != nil {
				return nil, err
			}
			return added, nil
		}
	}

	item, err := i.buildItem(in, product)
	if err != nil {
		return nil, err
	}

	err = i.mutateItems(func() error {
		i.Items = append(i.Items, *item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &i.Items[len(i.Items)-1], nil
}

func (i *Invoice) buildItem(in ItemInput, product *ProductSnapshot) (*InvoiceItem, error) {
	now := time.Now()
	item := &InvoiceItem{
		ID:          uuid.New(),
		InvoiceID:   i.ID,
		Description: strings.TrimSpace(in.Description),
		Quantity:    in.Quantity,
		TaxRate:     valueobject.DefaultTaxRate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if product != nil {
		if !product.IsActive {
			return nil, shared.NewValidationError("product %s is inactive", product.Name)
		}
		id := product.ID
		item.ProductID = &id
		item.UnitPrice = product.Price
		item.TaxRate = product.TaxRate
		if item.Description == "" {
			item.Description = product.Name
		}
	} else {
		if item.Description == "" {
			return nil, shared.NewValidationError("description is required for a line without a product")
		}
		if in.UnitPrice == nil {
			return nil, shared.NewValidationError("unit price is required for a line without a product")
		}
	}

	if in.UnitPrice != nil {
		item.UnitPrice = *in.UnitPrice
	}
	if in.TaxRate != nil {
		item.TaxRate = *in.TaxRate
	}
	if err := validateItemPricing(item.UnitPrice, item.TaxRate); err != nil {
		return nil, err
	}
	item.UnitPrice = valueobject.RoundMoney(item.UnitPrice)
	return item, nil
}

// UpdateItem changes quantity, price, tax rate or description of a line
func (i *Invoice) UpdateItem(itemID uuid.UUID, upd ItemUpdate) (*InvoiceItem, error) {
	if err := i.ensureItemsEditable(); err != nil {
		return nil, err
	}
	idx := i.itemIndex(itemID)
	if idx < 0 {
		return nil, shared.NewNotFoundError("invoice item")
	}

	current := i.Items[idx]
	if upd.Quantity != nil {
		if err := valueobject.ValidateLineQuantity(*upd.Quantity); err != nil {
			return nil, shared.NewValidationError("%s", err.Error())
		}
		current.Quantity = *upd.Quantity
	}
	if upd.UnitPrice != nil {
		current.UnitPrice = valueobject.RoundMoney(*upd.UnitPrice)
	}
	if upd.TaxRate != nil {
		current.TaxRate = *upd.TaxRate
	}
	if upd.Description != nil {
		current.Description = strings.TrimSpace(*upd.Description)
		if current.Description == "" && !current.HasProduct() {
			return nil, shared.NewValidationError("description is required for a line without a product")
		}
	}
	if err := validateItemPricing(current.UnitPrice, current.TaxRate); err != nil {
		return nil, err
	}

	err := i.mutateItems(func() error {
		current.UpdatedAt = time.Now()
		i.Items[idx] = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &i.Items[idx], nil
}

// RemoveItem deletes a line
func (i *Invoice) RemoveItem(itemID uuid.UUID) error {
	if err := i.ensureItemsEditable(); err != nil {
		return err
	}
	idx := i.itemIndex(itemID)
	if idx < 0 {
		return shared.NewNotFoundError("invoice item")
	}
	return i.mutateItems(func() error {
		i.Items = append(i.Items[:idx:idx], i.Items[idx+1:]...)
		return nil
	})
}

// SetDiscount sets the invoice-level discount
func (i *Invoice) SetDiscount(amount decimal.Decimal) error {
	if i.StockApplied {
		return shared.ErrFinalizedInvoiceImmutable
	}
	if err := i.ensureOpen(); err != nil {
		return err
	}
	if err := i.ensureNoPayments(); err != nil {
		return err
	}
	amount = valueobject.RoundMoney(amount)
	if amount.IsNegative() {
		return shared.NewValidationError("discount cannot be negative")
	}
	gross := i.Subtotal.Add(i.TaxAmount)
	if amount.GreaterThan(gross) {
		return shared.NewValidationError("discount %s exceeds invoice amount %s",
			valueobject.FormatMoney(amount), valueobject.FormatMoney(gross))
	}

	i.DiscountAmount = amount
	i.CalculateTotals()
	i.touch()
	return nil
}

// ChangeCustomer moves the invoice to another customer
func (i *Invoice) ChangeCustomer(customerID uuid.UUID) error {
	if i.StockApplied {
		return shared.ErrFinalizedInvoiceImmutable
	}
	if err := i.ensureOpen(); err != nil {
		return err
	}
	if customerID == uuid.Nil {
		return shared.NewValidationError("customer is required")
	}
	i.CustomerID = customerID
	i.touch()
	return nil
}

// SetDueDate changes the due date. Allowed after finalization.
func (i *Invoice) SetDueDate(due time.Time) error {
	if err := i.ensureOpen(); err != nil {
		return err
	}
	due = shared.Today(due)
	if due.Before(i.InvoiceDate) {
		return shared.NewValidationError("due date cannot be before invoice date")
	}
	i.DueDate = due
	i.touch()
	return nil
}

// SetNotes replaces free-text notes and terms. Allowed in any state.
func (i *Invoice) SetNotes(notes, terms string) {
	i.Notes = notes
	i.Terms = terms
	i.touch()
}

// CalculateTotals recomputes every monetary field from the current items.
// It never patches totals incrementally. The discount is clamped so the
// total cannot go negative when lines are removed.
func (i *Invoice) CalculateTotals() {
	subtotal := decimal.Zero
	tax := decimal.Zero
	for idx := range i.Items {
		subtotal = subtotal.Add(i.Items[idx].LineTotal())
		tax = tax.Add(i.Items[idx].Tax())
	}

	i.Subtotal = valueobject.RoundMoney(subtotal)
	i.TaxAmount = valueobject.RoundMoney(tax)
	i.DiscountAmount = valueobject.MinMoney(i.DiscountAmount, i.Subtotal.Add(i.TaxAmount))
	i.TotalAmount = i.Subtotal.Add(i.TaxAmount).Sub(i.DiscountAmount)
}

// RequiredStock aggregates line quantities per product. Lines without a
// product do not affect stock and are skipped.
func (i *Invoice) RequiredStock() map[uuid.UUID]int64 {
	required := make(map[uuid.UUID]int64)
	for _, it := range i.Items {
		if it.ProductID == nil {
			continue
		}
		required[*it.ProductID] += it.Quantity
	}
	return required
}

// CanFinalize checks whether stock may be applied
func (i *Invoice) CanFinalize() error {
	if i.StockApplied {
		return shared.ErrAlreadyFinalized
	}
	if i.Status == InvoiceStatusCancelled {
		return shared.NewDomainError(shared.CodeInvalidState, "cannot finalize a cancelled invoice")
	}
	return nil
}

// MarkFinalized records that stock has been deducted. The caller must have
// deducted RequiredStock in the same transaction.
func (i *Invoice) MarkFinalized() error {
	if err := i.CanFinalize(); err != nil {
		return err
	}
	i.StockApplied = true
	if i.Status == InvoiceStatusDraft {
		i.Status = InvoiceStatusDue
	}
	i.touch()
	i.AddDomainEvent(NewInvoiceFinalizedEvent(i))
	return nil
}

// Send marks a draft invoice as sent to the customer
func (i *Invoice) Send() error {
	if !i.Status.CanTransitionTo(InvoiceStatusSent) {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("cannot send invoice in %s status", i.Status))
	}
	i.Status = InvoiceStatusSent
	i.touch()
	i.AddDomainEvent(NewInvoiceSentEvent(i))
	return nil
}

// RecordPayment creates a payment and applies it to the invoice as one step.
// Either both the payment and the invoice change happen, or neither does.
// The invoice's paid date is the day of now even for a backdated payment;
// a payment dated after now is rejected.
func (i *Invoice) RecordPayment(actor shared.Actor, in PaymentInput, now time.Time) (*Payment, error) {
	if in.Method == "" {
		in.Method = PaymentMethodCash
	}
	if !in.Method.IsValid() {
		return nil, shared.NewValidationError("unknown payment method %q", in.Method)
	}
	at := now
	if in.PaidAt != nil {
		if in.PaidAt.After(now) {
			return nil, shared.NewValidationError("paid_at cannot be in the future")
		}
		at = *in.PaidAt
	}

	amount := valueobject.RoundMoney(in.Amount)
	if err := i.ApplyPayment(amount, now); err != nil {
		return nil, err
	}

	payment := &Payment{
		ID:        uuid.New(),
		TenantID:  i.TenantID,
		InvoiceID: i.ID,
		Amount:    amount,
		Method:    in.Method,
		Reference: strings.TrimSpace(in.Reference),
		Notes:     in.Notes,
		CreatedBy: actor.UserRef(),
		PaidAt:    at,
		CreatedAt: time.Now(),
	}
	i.AddDomainEvent(NewPaymentRecordedEvent(i, payment))
	if i.Status == InvoiceStatusPaid {
		i.AddDomainEvent(NewInvoicePaidEvent(i))
	}
	return payment, nil
}

// ApplyPayment adds amount to the paid amount and re-evaluates status.
// The paid amount is clamped to the total; reaching it marks the invoice paid.
func (i *Invoice) ApplyPayment(amount decimal.Decimal, at time.Time) error {
	amount = valueobject.RoundMoney(amount)
	if !amount.IsPositive() {
		return shared.NewValidationError("payment amount must be greater than zero")
	}
	if i.Status == InvoiceStatusPaid {
		return shared.ErrAlreadyPaid
	}
	if !i.Status.AcceptsPayment() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("cannot record payment for invoice in %s status", i.Status))
	}

	paid := valueobject.RoundMoney(i.PaidAmount.Add(amount))
	if paid.GreaterThanOrEqual(i.TotalAmount) {
		today := shared.Today(at)
		i.PaidAmount = i.TotalAmount
		i.Status = InvoiceStatusPaid
		i.PaidDate = &today
	} else {
		i.PaidAmount = paid
		i.Status = InvoiceStatusPartial
	}
	i.touch()
	return nil
}

// FullPaymentAmount returns what is left to pay, failing with ALREADY_PAID
// when nothing remains
func (i *Invoice) FullPaymentAmount() (decimal.Decimal, error) {
	remaining := i.RemainingAmount()
	if i.Status == InvoiceStatusPaid || !remaining.IsPositive() {
		return decimal.Zero, shared.ErrAlreadyPaid
	}
	return remaining, nil
}

// RemainingAmount returns total minus paid
func (i *Invoice) RemainingAmount() decimal.Decimal {
	return i.TotalAmount.Sub(i.PaidAmount)
}

// CanCancel checks whether the invoice may be cancelled
func (i *Invoice) CanCancel() error {
	if !i.Status.CanTransitionTo(InvoiceStatusCancelled) {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("cannot cancel invoice in %s status", i.Status))
	}
	if i.PaidAmount.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidState, "cannot cancel an invoice with recorded payments")
	}
	return nil
}

// Cancel moves the invoice to cancelled. When stock had been applied the
// caller must have restored it first; the invoice then stops counting as
// stock-applied.
func (i *Invoice) Cancel() error {
	if err := i.CanCancel(); err != nil {
		return err
	}
	restored := i.StockApplied
	i.StockApplied = false
	i.Status = InvoiceStatusCancelled
	i.touch()
	i.AddDomainEvent(NewInvoiceCancelledEvent(i, restored))
	return nil
}

// CanDelete checks whether the invoice may be deleted
func (i *Invoice) CanDelete() error {
	if i.StockApplied {
		return shared.ErrFinalizedInvoiceImmutable
	}
	return nil
}

// IsOverdue reports a pending invoice whose due date has passed
func (i *Invoice) IsOverdue(now time.Time) bool {
	return i.Status.IsPending() && i.DueDate.Before(shared.Today(now))
}

// EffectiveStatus returns the stored status, or overdue when it applies
func (i *Invoice) EffectiveStatus(now time.Time) InvoiceStatus {
	if i.IsOverdue(now) {
		return InvoiceStatusOverdue
	}
	return i.Status
}

// ItemCount returns the number of lines
func (i *Invoice) ItemCount() int {
	return len(i.Items)
}

// FindItem returns the line with the given ID
func (i *Invoice) FindItem(itemID uuid.UUID) *InvoiceItem {
	if idx := i.itemIndex(itemID); idx >= 0 {
		return &i.Items[idx]
	}
	return nil
}

func (i *Invoice) ensureItemsEditable() error {
	if i.StockApplied {
		return shared.ErrFinalizedInvoiceImmutable
	}
	if err := i.ensureOpen(); err != nil {
		return err
	}
	return i.ensureNoPayments()
}

func (i *Invoice) ensureOpen() error {
	if i.Status.IsTerminal() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("invoice in %s status cannot be modified", i.Status))
	}
	return nil
}

// Amounts are frozen once money has been received
func (i *Invoice) ensureNoPayments() error {
	if i.PaidAmount.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidState, "invoice with recorded payments cannot be modified")
	}
	return nil
}

// mutateItems runs fn and recomputes totals. On error the items and totals
// are restored, so a failed mutation leaves no trace.
func (i *Invoice) mutateItems(fn func() error) error {
	items := make([]InvoiceItem, len(i.Items))
	copy(items, i.Items)
	subtotal, tax, discount, total := i.Subtotal, i.TaxAmount, i.DiscountAmount, i.TotalAmount

	err := fn()
	if err == nil {
		i.CalculateTotals()
		if i.TotalAmount.LessThan(i.PaidAmount) {
			err = shared.NewValidationError("invoice total cannot fall below the paid amount")
		}
	}
	if err != nil {
		i.Items = items
		i.Subtotal, i.TaxAmount, i.DiscountAmount, i.TotalAmount = subtotal, tax, discount, total
		return err
	}
	i.touch()
	return nil
}

func (i *Invoice) itemIndex(itemID uuid.UUID) int {
	for idx := range i.Items {
		if i.Items[idx].ID == itemID {
			return idx
		}
	}
	return -1
}

func (i *Invoice) itemIndexByProduct(productID uuid.UUID) int {
	for idx := range i.Items {
		if p := i.Items[idx].ProductID; p != nil && *p == productID {
			return idx
		}
	}
	return -1
}

func (i *Invoice) touch() {
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}

func validateItemPricing(unitPrice, taxRate decimal.Decimal) error {
	if err := valueobject.ValidatePrice(unitPrice); err != nil {
		return shared.NewValidationError("unit %s", err.Error())
	}
	if _, err := valueobject.NewTaxRate(taxRate); err != nil {
		return shared.NewValidationError("%s", err.Error())
	}
	return nil
}
