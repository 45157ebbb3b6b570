package billing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/billing"
	"github.com/shopbill/backend/internal/domain/inventory"
	"github.com/shopbill/backend/internal/domain/partner"
	"github.com/shopbill/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type billingFixture struct {
	store     *memoryStore
	invoices  *InvoiceService
	payments  *PaymentService
	publisher *recordingPublisher
	actor     shared.Actor
	customer  *partner.Customer
}

func newBillingFixture(t *testing.T) *billingFixture {
	t.Helper()
	store := newMemoryStore()
	scope := store.scope()
	clock := shared.FixedClock{At: testNow}
	publisher := &recordingPublisher{}

	invoices := NewInvoiceService(scope, &memoryInvoiceRepo{store}, clock, zap.NewNop())
	invoices.SetEventPublisher(publisher)
	payments := NewPaymentService(scope, &memoryInvoiceRepo{store}, &memoryPaymentRepo{store}, clock, zap.NewNop())
	payments.SetEventPublisher(publisher)

	actor := shared.NewActor(uuid.New(), uuid.New(), shared.RoleOwner)
	customer, err := partner.NewCustomer(actor, partner.CustomerInput{Name: "Asha Traders"})
	require.NoError(t, err)
	require.NoError(t, (&memoryCustomerRepo{store}).Save(context.Background(), customer))

	return &billingFixture{
		store:     store,
		invoices:  invoices,
		payments:  payments,
		publisher: publisher,
		actor:     actor,
		customer:  customer,
	}
}

func (f *billingFixture) addProduct(t *testing.T, name string, price string, stock int64) *inventory.Product {
	t.Helper()
	tax := decimal.NewFromInt(18)
	p, err := inventory.NewProduct(f.actor, inventory.ProductInput{
		Name:    name,
		SKU:     "SKU-" + name,
		Price:   decimal.RequireFromString(price),
		TaxRate: &tax,
	})
	require.NoError(t, err)
	p.StockQuantity = stock
	require.NoError(t, (&memoryProductRepo{f.store}).Save(context.Background(), p))
	return p
}

func (f *billingFixture) createInvoice(t *testing.T, items ...AddItemRequest) *InvoiceResponse {
	t.Helper()
	resp, err := f.invoices.Create(context.Background(), f.actor, CreateInvoiceRequest{
		CustomerID: f.customer.ID,
		Items:      items,
	})
	require.NoError(t, err)
	return resp
}

func productLine(p *inventory.Product, qty int64) AddItemRequest {
	id := p.ID
	return AddItemRequest{ProductID: &id, Quantity: qty}
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, money(expected).Equal(actual), "expected %s, got %s", expected, actual.StringFixed(2))
}

func TestInvoiceService_FinalizeAndPay(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t)
	widget := f.addProduct(t, "widget", "100", 10)

	created := f.createInvoice(t, productLine(widget, 3))
	assert.Equal(t, "INV-2025-0001", created.InvoiceNumber)
	assert.Equal(t, string(billing.InvoiceStatusDraft), created.Status)
	assertMoney(t, "300", created.Subtotal)
	assertMoney(t, "54", created.TaxAmount)
	assertMoney(t, "354", created.TotalAmount)
	assert.Equal(t, "2025-06-10", created.InvoiceDate)
	assert.Equal(t, "2025-07-10", created.DueDate)

	finalized, err := f.invoices.Finalize(ctx, f.actor, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(billing.InvoiceStatusDue), finalized.Status)
	assert.True(t, finalized.StockApplied)
	assert.Equal(t, int64(7), f.store.product(widget.ID).StockQuantity)

	movements := f.store.movementsFor(widget.ID)
	require.Len(t, movements, 1)
	assert.Equal(t, inventory.MovementTypeOut, movements[0].Type)
	assert.Equal(t, int64(3), movements[0].Quantity)
	assert.Equal(t, inventory.SourceInvoice, movements[0].SourceType)
	assert.Equal(t, created.ID, *movements[0].SourceID)
	assert.Equal(t, "INV-2025-0001", movements[0].Reference)

	first, err := f.payments.RecordPayment(ctx, f.actor, created.ID, RecordPaymentRequest{Amount: money("200"), Method: "upi"})
	require.NoError(t, err)
	assert.Equal(t, string(billing.InvoiceStatusPartial), first.Invoice.Status)
	assertMoney(t, "200", first.Invoice.PaidAmount)
	assertMoney(t, "154", first.Invoice.RemainingAmount)

	second, err := f.payments.RecordPayment(ctx, f.actor, created.ID, RecordPaymentRequest{Amount: money("154")})
	require.NoError(t, err)
	assert.Equal(t, string(billing.InvoiceStatusPaid), second.Invoice.Status)
	assertMoney(t, "354", second.Invoice.PaidAmount)
	require.NotNil(t, second.Invoice.PaidDate)
	assert.Equal(t, "2025-06-10", *second.Invoice.PaidDate)
	assert.Equal(t, string(billing.PaymentMethodCash), second.Payment.Method)

	stored := f.store.invoice(created.ID)
	assert.Equal(t, billing.InvoiceStatusPaid, stored.Status)
	assert.Equal(t, int64(7), f.store.product(widget.ID).StockQuantity, "payments never touch stock")

	listed, err := f.payments.ListPayments(ctx, f.actor, created.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	assert.Subset(t, f.publisher.types(), []string{
		billing.EventTypeInvoiceCreated,
		billing.EventTypeInvoiceFinalized,
		inventory.EventTypeStockChanged,
		billing.EventTypePaymentRecorded,
		billing.EventTypeInvoicePaid,
	})
}

func TestInvoiceService_FinalizeInsufficientStock(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t)
	scarce := f.addProduct(t, "scarce", "50", 2)
	plenty := f.addProduct(t, "plenty", "20", 100)

	created := f.createInvoice(t, productLine(scarce, 5), productLine(plenty, 4))

	_, err := f.invoices.Finalize(ctx, f.actor, created.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock))

	assert.Equal(t, int64(2), f.store.product(scarce.ID).StockQuantity)
	assert.Equal(t, int64(100), f.store.product(plenty.ID).StockQuantity)
	assert.Empty(t, f.store.movementsFor(scarce.ID))
	assert.Empty(t, f.store.movementsFor(plenty.ID))

	stored := f.store.invoice(created.ID)
	assert.False(t, stored.StockApplied)
	assert.Equal(t, billing.InvoiceStatusDraft, stored.Status)
}

func TestInvoiceService_FinalizeTwice(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t)
	widget := f.addProduct(t, "widget", "100", 10)
	created := f.createInvoice(t, productLine(widget, 3))

	_, err := f.invoices.Finalize(ctx, f.actor, created.ID)
	require.NoError(t, err)

	_, err = f.invoices.Finalize(ctx, f.actor, created.ID)
	assert.True(t, errors.Is(err, shared.ErrAlreadyFinalized))
	assert.Equal(t, int64(7), f.store.product(widget.ID).StockQuantity)
	assert.Len(t, f.store.movementsFor(widget.ID), 1)
}

func TestInvoiceService_FinalizedInvoiceIsImmutable(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t)
	widget := f.addProduct(t, "widget", "100", 10)
	created := f.createInvoice(t, productLine(widget, 3))
	itemID := created.Items[0].ID

	_, err := f.invoices.Finalize(ctx, f.actor, created.ID)
	require.NoError(t, err)

	qty := int64(1)
	_, err = f.invoices.UpdateItem(ctx, f.actor, created.ID, itemID, UpdateItemRequest{Quantity: &qty})
	assert.True(t, errors.Is(err, shared.ErrFinalizedInvoiceImmutable))

	_, err = f.invoices.RemoveItem(ctx, f.actor, created.ID, itemID)
	assert.True(t, errors.Is(err, shared.ErrFinalizedInvoiceImmutable))

	_, err = f.invoices.AddItem(ctx, f.actor, created.ID, productLine(widget, 1))
	assert.True(t, errors.Is(err, shared.ErrFinalizedInvoiceImmutable))

	discount := money("10")
	_, err = f.invoices.Update(ctx, f.actor, created.ID, UpdateInvoiceRequest{Discount: &discount})
	assert.True(t, errors.Is(err, shared.ErrFinalizedInvoiceImmutable))

	stored := f.store.invoice(created.ID)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, int64(3), stored.Items[0].Quantity)
	assertMoney(t, "354", stored.TotalAmount)

	notes := "deliver before noon"
	updated, err := f.invoices.Update(ctx, f.actor, created.ID, UpdateInvoiceRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)
}

func TestInvoiceService_DraftEditing(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t)
	widget := f.addProduct(t, "widget", "100", 10)
	created := f.createInvoice(t)
	assert.Empty(t, created.Items)
	assertMoney(t, "0", created.TotalAmount)

	withItem, err := f.invoices.AddItem(ctx, f.actor, created.ID, productLine(widget, 2))
	require.NoError(t, err)
	require.Len(t, withItem.Items, 1)
	assertMoney(t, "236", withItem.TotalAmount)

	withItem, err = f.invoices.AddItem(ctx, f.actor, created.ID, productLine(widget, 1))
	require.NoError(t, err)
	require.Len(t, withItem.Items, 1, "same product increments the existing line")
	assert.Equal(t, int64(3), withItem.Items[0].Quantity)

	price := money("25")
	manual, err := f.invoices.AddItem(ctx, f.actor, created.ID, AddItemRequest{
		Description: "Gift wrapping",
		Quantity:    1,
		UnitPrice:   &price,
	})
	require.NoError(t, err)
	require.Len(t, manual.Items, 2)
	assertMoney(t, "383.50", manual.TotalAmount)

	discount := money("3.50")
	discounted, err := f.invoices.Update(ctx, f.actor, created.ID, UpdateInvoiceRequest{Discount: &discount})
	require.NoError(t, err)
	assertMoney(t, "380", discounted.TotalAmount)

	removed, err := f.invoices.RemoveItem(ctx, f.actor, created.ID, manual.Items[1].ID)
	require.NoError(t, err)
	require.Len(t, removed.Items, 1)
	assertMoney(t, "350.50", removed.TotalAmount)

	_, err = f.invoices.AddItem(ctx, f.actor, created.ID, AddItemRequest{Quantity: 0, Description: "x", UnitPrice: &price})
	assert.True(t, errors.Is(err, shared.ErrValidation))

	missing := uuid.New()
	_, err = f.invoices.AddItem(ctx, f.actor, created.ID, AddItemRequest{ProductID: &missing, Quantity: 1})
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestInvoiceService_ManualLineUsesConfiguredTaxRate(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t)
	f.invoices.SetDefaultTaxRate(money("5"))
	created := f.createInvoice(t)

	price := money("200")
	resp, err := f.invoices.AddItem(ctx, f.actor, created.ID, AddItemRequest{
		Description: "Delivery",
		Quantity:    1,
		UnitPrice:   &price,
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assertMoney(t, "5", resp.Items[0].TaxRate)
	assertMoney(t, "10", resp.TaxAmount)
	assertMoney(t, "210", resp.TotalAmount)

	explicit := money("12")
	resp, err = f.invoices.AddItem(ctx, f.actor, created.ID, AddItemRequest{
		Description: "Installation",
		Quantity:    1,
		UnitPrice:   &price,
		TaxRate:     &explicit,
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	assertMoney(t, "12", resp.Items[1].TaxRate)

	t.Run("invalid rates are ignored", func(t *testing.T) {
		f := newBillingFixture(t)
		f.invoices.SetDefaultTaxRate(money("12.345"))
		f.invoices.SetDefaultTaxRate(money("150"))
		resp := f.createInvoice(t, AddItemRequest{Description: "Delivery", Quantity: 1, UnitPrice: &price})
		assertMoney(t, "18", resp.Items[0].TaxRate)
	})
}

func TestInvoiceService_SequentialNumbers(t *testing.T) {
	f := newBillingFixture(t)

	first := f.createInvoice(t)
	second := f.createInvoice(t)
	third := f.createInvoice(t)
	assert.Equal(t, "INV-2025-0001", first.InvoiceNumber)
	assert.Equal(t, "INV-2025-0002", second.InvoiceNumber)
	assert.Equal(t, "INV-2025-0003", third.InvoiceNumber)

	// numbering is per shop
	other := newBillingFixture(t)
	other.invoices = NewInvoiceService(f.store.scope(), &memoryInvoiceRepo{f.store}, shared.FixedClock{At: testNow}, nil)
	require.NoError(t, (&memoryCustomerRepo{f.store}).Save(context.Background(), other.customer))
	otherFirst := other.createInvoice(t)
	assert.Equal(t, "INV-2025-0001", otherFirst.InvoiceNumber)
}

func TestInvoiceService_NumberFollowsIssuedNumbers(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t)

	imported, err := billing.NewInvoice(f.actor, f.customer.ID, testNow, nil, 0)
	require.NoError(t, err)
	require.NoError(t, imported.AssignNumber("INV-2025-0041"))
	require.NoError(t, (&memoryInvoiceRepo{f.store}).Save(ctx, imported))

	next := f.createInvoice(t)
	assert.Equal(t, "INV-2025-0042", next.InvoiceNumber)
}

func TestInvoiceService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t)

	_, err := f.invoices.Create(ctx, shared.Actor{}, CreateInvoiceRequest{CustomerID: f.customer.ID})
	assert.True(t, errors.Is(err, shared.ErrValidation))

	_, err = f.invoices.Create(ctx, f.actor, CreateInvoiceRequest{CustomerID: uuid.New()})
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	_, err = f.invoices.Create(ctx, f.actor, CreateInvoiceRequest{CustomerID: f.customer.ID, DueDate: "10/06/2025"})
	assert.True(t, errors.Is(err, shared.ErrValidation))

	_, err = f.invoices.Create(ctx, f.actor, CreateInvoiceRequest{
		CustomerID:  f.customer.ID,
		InvoiceDate: "2025-06-10",
		DueDate:     "2025-06-01",
	})
	assert.True(t, errors.Is(err, shared.ErrValidation))

	assert.Empty(t, f.store.invoices, "rejected requests store nothing")
}

func TestInvoiceService_CancelRestoresStock(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t)
	widget := f.addProduct(t, "widget", "100", 10)
	created := f.createInvoice(t, productLine(widget, 3))

	_, err := f.invoices.Finalize(ctx, f.actor, created.ID)
	require.NoError(t, err)
	require.Equal(t, int64(7), f.store.product(widget.ID).StockQuantity)

	err = f.invoices.Delete(ctx, f.actor, created.ID)
	assert.True(t, errors.Is(err, shared.ErrFinalizedInvoiceImmutable))
	require.NotNil(t, f.store.invoice(created.ID))

	cancelled, err := f.invoices.Cancel(ctx, f.actor, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(billing.InvoiceStatusCancelled), cancelled.Status)
	assert.False(t, cancelled.StockApplied)
	assert.Equal(t, int64(10), f.store.product(widget.ID).StockQuantity)

	movements := f.store.movementsFor(widget.ID)
	require.Len(t, movements, 2)
	assert.Equal(t, inventory.MovementTypeIn, movements[1].Type)
	assert.Equal(t, inventory.SourceInvoiceCancel, movements[1].SourceType)

	_, err = f.invoices.Finalize(ctx, f.actor, created.ID)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))

	require.NoError(t, f.invoices.Delete(ctx, f.actor, created.ID))
	assert.Nil(t, f.store.invoice(created.ID))
}

func TestInvoiceService_CancelWithPaymentsRejected(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t)
	widget := f.addProduct(t, "widget", "100", 10)
	created := f.createInvoice(t, productLine(widget, 1))

	_, err := f.invoices.Finalize(ctx, f.actor, created.ID)
	require.NoError(t, err)
	_, err = f.payments.RecordPayment(ctx, f.actor, created.ID, RecordPaymentRequest{Amount: money("10")})
	require.NoError(t, err)

	_, err = f.invoices.Cancel(ctx, f.actor, created.ID)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
	assert.Equal(t, int64(9), f.store.product(widget.ID).StockQuantity)
}

func TestInvoiceService_DeleteDraft(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t)
	widget := f.addProduct(t, "widget", "100", 10)
	created := f.createInvoice(t, productLine(widget, 3))

	require.NoError(t, f.invoices.Delete(ctx, f.actor, created.ID))
	assert.Nil(t, f.store.invoice(created.ID))
	assert.Equal(t, int64(10), f.store.product(widget.ID).StockQuantity)

	err := f.invoices.Delete(ctx, f.actor, created.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestInvoiceService_SendThenFinalize(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t)
	widget := f.addProduct(t, "widget", "100", 10)
	created := f.createInvoice(t, productLine(widget, 2))

	sent, err := f.invoices.Send(ctx, f.actor, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(billing.InvoiceStatusSent), sent.Status)

	finalized, err := f.invoices.Finalize(ctx, f.actor, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(billing.InvoiceStatusSent), finalized.Status)
	assert.True(t, finalized.StockApplied)
	assert.Equal(t, int64(8), f.store.product(widget.ID).StockQuantity)
}

func TestInvoiceService_ListOverdue(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t)
	widget := f.addProduct(t, "widget", "100", 10)

	late, err := f.invoices.Create(ctx, f.actor, CreateInvoiceRequest{
		CustomerID:  f.customer.ID,
		InvoiceDate: "2025-05-01",
		DueDate:     "2025-06-01",
		Items:       []AddItemRequest{productLine(widget, 1)},
	})
	require.NoError(t, err)
	_, err = f.invoices.Finalize(ctx, f.actor, late.ID)
	require.NoError(t, err)

	dueToday, err := f.invoices.Create(ctx, f.actor, CreateInvoiceRequest{
		CustomerID:  f.customer.ID,
		InvoiceDate: "2025-06-01",
		DueDate:     "2025-06-10",
		Items:       []AddItemRequest{productLine(widget, 1)},
	})
	require.NoError(t, err)
	_, err = f.invoices.Finalize(ctx, f.actor, dueToday.ID)
	require.NoError(t, err)

	draftLate, err := f.invoices.Create(ctx, f.actor, CreateInvoiceRequest{
		CustomerID:  f.customer.ID,
		InvoiceDate: "2025-05-01",
		DueDate:     "2025-05-15",
	})
	require.NoError(t, err)

	overdue, total, err := f.invoices.ListOverdue(ctx, f.actor, InvoiceListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, overdue, 1)
	assert.Equal(t, late.ID, overdue[0].ID)
	assert.Equal(t, string(billing.InvoiceStatusDue), overdue[0].Status)
	assert.Equal(t, string(billing.InvoiceStatusOverdue), overdue[0].EffectiveStatus)

	pending, total, err := f.invoices.ListPending(ctx, f.actor, InvoiceListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, pending, 2)

	got, err := f.invoices.GetByID(ctx, f.actor, draftLate.ID)
	require.NoError(t, err)
	assert.False(t, got.IsOverdue, "drafts are never overdue")

	_, _, err = f.invoices.List(ctx, f.actor, InvoiceListFilter{Status: "archived"})
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestInvoiceService_TenantIsolation(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t)
	created := f.createInvoice(t)

	stranger := shared.NewActor(uuid.New(), uuid.New(), shared.RoleOwner)
	_, err := f.invoices.GetByID(ctx, stranger, created.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	_, err = f.invoices.Finalize(ctx, stranger, created.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	_, err = f.payments.RecordPayment(ctx, stranger, created.ID, RecordPaymentRequest{Amount: money("1")})
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}
