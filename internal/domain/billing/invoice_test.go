package billing

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDay = time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)

func testActor() shared.Actor {
	return shared.NewActor(uuid.New(), uuid.New(), shared.RoleStaff)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func testProduct(price, tax string) *ProductSnapshot {
	return &ProductSnapshot{
		ID:       uuid.New(),
		Name:     "Widget",
		Price:    dec(price),
		TaxRate:  dec(tax),
		IsActive: true,
	}
}

func createTestInvoice(t *testing.T) *Invoice {
	t.Helper()
	inv, err := NewInvoice(testActor(), uuid.New(), testDay, nil, 0)
	require.NoError(t, err)
	require.NoError(t, inv.AssignNumber("INV-2025-0001"))
	inv.ClearDomainEvents()
	return inv
}

func addProductLine(t *testing.T, inv *Invoice, p *ProductSnapshot, qty int64) *InvoiceItem {
	t.Helper()
	id := p.ID
	item, err := inv.AddItem(ItemInput{ProductID: &id, Quantity: qty}, p)
	require.NoError(t, err)
	return item
}

func assertTotalsInvariant(t *testing.T, inv *Invoice) {
	t.Helper()
	expected := inv.Subtotal.Add(inv.TaxAmount).Sub(inv.DiscountAmount)
	assert.True(t, inv.TotalAmount.Equal(expected), "total %s != %s", inv.TotalAmount, expected)
	assert.False(t, inv.PaidAmount.IsNegative())
	assert.True(t, inv.PaidAmount.LessThanOrEqual(inv.TotalAmount))
}

func TestNewInvoice(t *testing.T) {
	t.Run("defaults due date to thirty days", func(t *testing.T) {
		inv, err := NewInvoice(testActor(), uuid.New(), testDay, nil, 0)
		require.NoError(t, err)
		assert.Equal(t, InvoiceStatusDraft, inv.Status)
		assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), inv.InvoiceDate)
		assert.Equal(t, time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC), inv.DueDate)
		assert.True(t, inv.TotalAmount.IsZero())
		assert.False(t, inv.StockApplied)
	})

	t.Run("honours explicit due date", func(t *testing.T) {
		due := testDay.AddDate(0, 0, 7)
		inv, err := NewInvoice(testActor(), uuid.New(), testDay, &due, 0)
		require.NoError(t, err)
		assert.Equal(t, shared.Today(due), inv.DueDate)
	})

	t.Run("rejects due date before invoice date", func(t *testing.T) {
		due := testDay.AddDate(0, 0, -1)
		_, err := NewInvoice(testActor(), uuid.New(), testDay, &due, 0)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("requires customer", func(t *testing.T) {
		_, err := NewInvoice(testActor(), uuid.Nil, testDay, nil, 0)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestInvoice_AssignNumber(t *testing.T) {
	inv, err := NewInvoice(testActor(), uuid.New(), testDay, nil, 0)
	require.NoError(t, err)

	require.NoError(t, inv.AssignNumber("INV-2025-0007"))
	assert.Equal(t, "INV-2025-0007", inv.InvoiceNumber)
	require.Len(t, inv.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeInvoiceCreated, inv.GetDomainEvents()[0].EventType())

	err = inv.AssignNumber("INV-2025-0008")
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
}

func TestInvoice_AddItem(t *testing.T) {
	t.Run("snapshots price and tax from product", func(t *testing.T) {
		inv := createTestInvoice(t)
		p := testProduct("100", "18")
		item := addProductLine(t, inv, p, 3)

		assert.Equal(t, "Widget", item.Description)
		assert.True(t, item.UnitPrice.Equal(dec("100")))
		assert.True(t, item.TaxRate.Equal(dec("18")))

		p.Price = dec("250")
		assert.True(t, inv.Items[0].UnitPrice.Equal(dec("100")), "not live-linked to product")

		assert.Equal(t, "300.00", inv.Subtotal.StringFixed(2))
		assert.Equal(t, "54.00", inv.TaxAmount.StringFixed(2))
		assert.Equal(t, "354.00", inv.TotalAmount.StringFixed(2))
		assertTotalsInvariant(t, inv)
	})

	t.Run("explicit price and tax override product", func(t *testing.T) {
		inv := createTestInvoice(t)
		p := testProduct("100", "18")
		id := p.ID
		_, err := inv.AddItem(ItemInput{ProductID: &id, Quantity: 1, UnitPrice: decPtr("80"), TaxRate: decPtr("5")}, p)
		require.NoError(t, err)
		assert.Equal(t, "84.00", inv.TotalAmount.StringFixed(2))
	})

	t.Run("re-adding a product increments the existing line", func(t *testing.T) {
		inv := createTestInvoice(t)
		p := testProduct("10", "0")
		first := addProductLine(t, inv, p, 2)
		second := addProductLine(t, inv, p, 3)

		require.Len(t, inv.Items, 1)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, int64(5), inv.Items[0].Quantity)
		assert.Equal(t, "50.00", inv.TotalAmount.StringFixed(2))
	})

	t.Run("manual line needs description and price", func(t *testing.T) {
		inv := createTestInvoice(t)
		_, err := inv.AddItem(ItemInput{Quantity: 1, UnitPrice: decPtr("10")}, nil)
		assert.True(t, errors.Is(err, shared.ErrValidation))

		_, err = inv.AddItem(ItemInput{Description: "Delivery", Quantity: 1}, nil)
		assert.True(t, errors.Is(err, shared.ErrValidation))

		item, err := inv.AddItem(ItemInput{Description: "Delivery", Quantity: 1, UnitPrice: decPtr("50")}, nil)
		require.NoError(t, err)
		assert.False(t, item.HasProduct())
		assert.True(t, item.TaxRate.Equal(dec("18")))
		assert.Equal(t, "59.00", inv.TotalAmount.StringFixed(2))
	})

	t.Run("rejects bad quantities and prices", func(t *testing.T) {
		inv := createTestInvoice(t)
		p := testProduct("10", "18")
		id := p.ID

		_, err := inv.AddItem(ItemInput{ProductID: &id, Quantity: 0}, p)
		assert.True(t, errors.Is(err, shared.ErrValidation))

		_, err = inv.AddItem(ItemInput{ProductID: &id, Quantity: 1, UnitPrice: decPtr("-1")}, p)
		assert.True(t, errors.Is(err, shared.ErrValidation))

		_, err = inv.AddItem(ItemInput{ProductID: &id, Quantity: 1, TaxRate: decPtr("101")}, p)
		assert.True(t, errors.Is(err, shared.ErrValidation))

		assert.Empty(t, inv.Items)
		assertTotalsInvariant(t, inv)
	})

	t.Run("rejects inactive or mismatched product", func(t *testing.T) {
		inv := createTestInvoice(t)
		p := testProduct("10", "18")
		p.IsActive = false
		id := p.ID
		_, err := inv.AddItem(ItemInput{ProductID: &id, Quantity: 1}, p)
		assert.True(t, errors.Is(err, shared.ErrValidation))

		other := uuid.New()
		_, err = inv.AddItem(ItemInput{ProductID: &other, Quantity: 1}, testProduct("1", "0"))
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestInvoice_UpdateAndRemoveItem(t *testing.T) {
	inv := createTestInvoice(t)
	a := addProductLine(t, inv, testProduct("100", "18"), 3)
	b := addProductLine(t, inv, testProduct("20", "5"), 1)
	assert.Equal(t, "375.00", inv.TotalAmount.StringFixed(2))

	qty := int64(1)
	_, err := inv.UpdateItem(a.ID, ItemUpdate{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, "139.00", inv.TotalAmount.StringFixed(2))

	zero := int64(0)
	_, err = inv.UpdateItem(a.ID, ItemUpdate{Quantity: &zero})
	assert.True(t, errors.Is(err, shared.ErrValidation))
	assert.Equal(t, int64(1), inv.FindItem(a.ID).Quantity)

	require.NoError(t, inv.RemoveItem(b.ID))
	assert.Len(t, inv.Items, 1)
	assert.Equal(t, "118.00", inv.TotalAmount.StringFixed(2))

	assert.True(t, errors.Is(inv.RemoveItem(uuid.New()), shared.ErrNotFound))
	_, err = inv.UpdateItem(uuid.New(), ItemUpdate{Quantity: &qty})
	assert.True(t, errors.Is(err, shared.ErrNotFound))
	assertTotalsInvariant(t, inv)
}

func TestInvoice_TaxIsRoundedOncePerInvoice(t *testing.T) {
	inv := createTestInvoice(t)
	var lines []*InvoiceItem
	for range 3 {
		lines = append(lines, addProductLine(t, inv, testProduct("0.10", "12.5"), 1))
	}

	// 3 × 0.0125 = 0.0375, not 3 × 0.01
	assert.Equal(t, "0.30", inv.Subtotal.StringFixed(2))
	assert.Equal(t, "0.04", inv.TaxAmount.StringFixed(2))
	assert.Equal(t, "0.34", inv.TotalAmount.StringFixed(2))
	assert.Equal(t, "0.01", lines[0].TaxAmount().StringFixed(2))
	assertTotalsInvariant(t, inv)
}

func TestInvoice_TaxRateScale(t *testing.T) {
	inv := createTestInvoice(t)
	fine := dec("12.345")

	p := testProduct("1000", "18")
	id := p.ID
	_, err := inv.AddItem(ItemInput{ProductID: &id, Quantity: 1, TaxRate: &fine}, p)
	assert.True(t, errors.Is(err, shared.ErrValidation))
	assert.Empty(t, inv.Items)

	item := addProductLine(t, inv, p, 1)
	_, err = inv.UpdateItem(item.ID, ItemUpdate{TaxRate: &fine})
	assert.True(t, errors.Is(err, shared.ErrValidation))
	assert.Equal(t, "18", inv.FindItem(item.ID).TaxRate.String())

	stored := dec("12.35")
	_, err = inv.UpdateItem(item.ID, ItemUpdate{TaxRate: &stored})
	require.NoError(t, err)
	assert.Equal(t, "123.50", inv.TaxAmount.StringFixed(2))
}

func TestInvoice_Discount(t *testing.T) {
	t.Run("applies and keeps invariant", func(t *testing.T) {
		inv := createTestInvoice(t)
		addProductLine(t, inv, testProduct("100", "18"), 3)

		require.NoError(t, inv.SetDiscount(dec("54")))
		assert.Equal(t, "300.00", inv.TotalAmount.StringFixed(2))
		assertTotalsInvariant(t, inv)
	})

	t.Run("rejects negative and oversize discount", func(t *testing.T) {
		inv := createTestInvoice(t)
		addProductLine(t, inv, testProduct("10", "0"), 1)
		assert.True(t, errors.Is(inv.SetDiscount(dec("-1")), shared.ErrValidation))
		assert.True(t, errors.Is(inv.SetDiscount(dec("10.01")), shared.ErrValidation))
		assert.True(t, inv.DiscountAmount.IsZero())
	})

	t.Run("removing lines clamps discount", func(t *testing.T) {
		inv := createTestInvoice(t)
		a := addProductLine(t, inv, testProduct("100", "0"), 1)
		addProductLine(t, inv, testProduct("10", "0"), 1)
		require.NoError(t, inv.SetDiscount(dec("50")))

		require.NoError(t, inv.RemoveItem(a.ID))
		assert.Equal(t, "10.00", inv.DiscountAmount.StringFixed(2))
		assert.True(t, inv.TotalAmount.IsZero())
		assertTotalsInvariant(t, inv)
	})
}

func TestInvoice_FinalizedIsImmutable(t *testing.T) {
	inv := createTestInvoice(t)
	p := testProduct("100", "18")
	item := addProductLine(t, inv, p, 3)
	require.NoError(t, inv.MarkFinalized())

	assert.True(t, inv.StockApplied)
	assert.Equal(t, InvoiceStatusDue, inv.Status)
	totalBefore := inv.TotalAmount

	id := p.ID
	_, err := inv.AddItem(ItemInput{ProductID: &id, Quantity: 1}, p)
	assert.True(t, errors.Is(err, shared.ErrFinalizedInvoiceImmutable))

	qty := int64(9)
	_, err = inv.UpdateItem(item.ID, ItemUpdate{Quantity: &qty})
	assert.True(t, errors.Is(err, shared.ErrFinalizedInvoiceImmutable))

	assert.True(t, errors.Is(inv.RemoveItem(item.ID), shared.ErrFinalizedInvoiceImmutable))
	assert.True(t, errors.Is(inv.SetDiscount(dec("1")), shared.ErrFinalizedInvoiceImmutable))
	assert.True(t, errors.Is(inv.ChangeCustomer(uuid.New()), shared.ErrFinalizedInvoiceImmutable))
	assert.True(t, errors.Is(inv.CanDelete(), shared.ErrFinalizedInvoiceImmutable))

	assert.True(t, inv.TotalAmount.Equal(totalBefore))
	assert.Equal(t, int64(3), inv.Items[0].Quantity)

	require.NoError(t, inv.SetDueDate(testDay.AddDate(0, 0, 45)), "due date stays editable")
}

func TestInvoice_Finalize(t *testing.T) {
	t.Run("aggregates quantities per product and skips manual lines", func(t *testing.T) {
		inv := createTestInvoice(t)
		p1 := testProduct("10", "0")
		p2 := testProduct("5", "0")
		addProductLine(t, inv, p1, 2)
		addProductLine(t, inv, p2, 1)
		addProductLine(t, inv, p1, 4)
		_, err := inv.AddItem(ItemInput{Description: "Gift wrap", Quantity: 1, UnitPrice: decPtr("2")}, nil)
		require.NoError(t, err)

		required := inv.RequiredStock()
		assert.Equal(t, map[uuid.UUID]int64{p1.ID: 6, p2.ID: 1}, required)
	})

	t.Run("second finalize fails", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.MarkFinalized())
		assert.True(t, errors.Is(inv.CanFinalize(), shared.ErrAlreadyFinalized))
		assert.True(t, errors.Is(inv.MarkFinalized(), shared.ErrAlreadyFinalized))
	})

	t.Run("sent invoice keeps its status", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.Send())
		require.NoError(t, inv.MarkFinalized())
		assert.Equal(t, InvoiceStatusSent, inv.Status)
	})

	t.Run("cancelled invoice cannot be finalized", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.Cancel())
		assert.True(t, errors.Is(inv.CanFinalize(), shared.ErrInvalidState))
	})
}

func TestInvoice_Payments(t *testing.T) {
	finalized := func(t *testing.T) *Invoice {
		inv := createTestInvoice(t)
		addProductLine(t, inv, testProduct("100", "18"), 3)
		require.NoError(t, inv.MarkFinalized())
		inv.ClearDomainEvents()
		return inv
	}

	t.Run("partial then full payment", func(t *testing.T) {
		inv := finalized(t)
		p1, err := inv.RecordPayment(testActor(), PaymentInput{Amount: dec("200"), Method: PaymentMethodUPI}, testDay)
		require.NoError(t, err)
		assert.Equal(t, "200.00", p1.Amount.StringFixed(2))
		assert.Equal(t, "200.00", inv.PaidAmount.StringFixed(2))
		assert.Equal(t, InvoiceStatusPartial, inv.Status)
		assert.Nil(t, inv.PaidDate)

		_, err = inv.RecordPayment(testActor(), PaymentInput{Amount: dec("154")}, testDay)
		require.NoError(t, err)
		assert.Equal(t, "354.00", inv.PaidAmount.StringFixed(2))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		require.NotNil(t, inv.PaidDate)
		assert.Equal(t, shared.Today(testDay), *inv.PaidDate)
		assertTotalsInvariant(t, inv)

		var types []string
		for _, e := range inv.GetDomainEvents() {
			types = append(types, e.EventType())
		}
		assert.Equal(t, []string{EventTypePaymentRecorded, EventTypePaymentRecorded, EventTypeInvoicePaid}, types)
	})

	t.Run("overpayment clamps paid amount", func(t *testing.T) {
		inv := finalized(t)
		p, err := inv.RecordPayment(testActor(), PaymentInput{Amount: dec("500")}, testDay)
		require.NoError(t, err)
		assert.Equal(t, "500.00", p.Amount.StringFixed(2))
		assert.Equal(t, "354.00", inv.PaidAmount.StringFixed(2))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
	})

	t.Run("backdated payment settles the invoice today", func(t *testing.T) {
		inv := finalized(t)
		earlier := testDay.AddDate(0, 0, -3)
		p, err := inv.RecordPayment(testActor(), PaymentInput{Amount: dec("354"), PaidAt: &earlier}, testDay)
		require.NoError(t, err)
		assert.True(t, earlier.Equal(p.PaidAt))
		require.NotNil(t, inv.PaidDate)
		assert.Equal(t, shared.Today(testDay), *inv.PaidDate)
	})

	t.Run("future payment date is rejected", func(t *testing.T) {
		inv := finalized(t)
		later := testDay.Add(time.Minute)
		_, err := inv.RecordPayment(testActor(), PaymentInput{Amount: dec("10"), PaidAt: &later}, testDay)
		assert.True(t, errors.Is(err, shared.ErrValidation))
		assert.True(t, inv.PaidAmount.IsZero())
		assert.Empty(t, inv.GetDomainEvents())
	})

	t.Run("amount is rounded half up", func(t *testing.T) {
		inv := finalized(t)
		p, err := inv.RecordPayment(testActor(), PaymentInput{Amount: dec("10.005")}, testDay)
		require.NoError(t, err)
		assert.Equal(t, "10.01", p.Amount.StringFixed(2))
		assert.Equal(t, "10.01", inv.PaidAmount.StringFixed(2))
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		inv := finalized(t)
		for _, amt := range []string{"0", "-5", "0.004"} {
			_, err := inv.RecordPayment(testActor(), PaymentInput{Amount: dec(amt)}, testDay)
			assert.True(t, errors.Is(err, shared.ErrValidation), amt)
		}
		assert.True(t, inv.PaidAmount.IsZero())
		assert.Equal(t, InvoiceStatusDue, inv.Status)
	})

	t.Run("rejects unknown method", func(t *testing.T) {
		inv := finalized(t)
		_, err := inv.RecordPayment(testActor(), PaymentInput{Amount: dec("1"), Method: "barter"}, testDay)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("status gates", func(t *testing.T) {
		draft := createTestInvoice(t)
		_, err := draft.RecordPayment(testActor(), PaymentInput{Amount: dec("1")}, testDay)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))

		paid := finalized(t)
		_, err = paid.RecordPayment(testActor(), PaymentInput{Amount: dec("354")}, testDay)
		require.NoError(t, err)
		_, err = paid.RecordPayment(testActor(), PaymentInput{Amount: dec("1")}, testDay)
		assert.True(t, errors.Is(err, shared.ErrAlreadyPaid))

		sent := createTestInvoice(t)
		addProductLine(t, sent, testProduct("10", "0"), 1)
		require.NoError(t, sent.Send())
		_, err = sent.RecordPayment(testActor(), PaymentInput{Amount: dec("4")}, testDay)
		require.NoError(t, err)
		assert.Equal(t, InvoiceStatusPartial, sent.Status)
	})

	t.Run("full payment amount", func(t *testing.T) {
		inv := finalized(t)
		_, err := inv.RecordPayment(testActor(), PaymentInput{Amount: dec("100")}, testDay)
		require.NoError(t, err)

		remaining, err := inv.FullPaymentAmount()
		require.NoError(t, err)
		assert.Equal(t, "254.00", remaining.StringFixed(2))

		_, err = inv.RecordPayment(testActor(), PaymentInput{Amount: remaining, Reference: MarkPaidReference}, testDay)
		require.NoError(t, err)
		_, err = inv.FullPaymentAmount()
		assert.True(t, errors.Is(err, shared.ErrAlreadyPaid))
	})

	t.Run("paid invoice is frozen for edits", func(t *testing.T) {
		inv := createTestInvoice(t)
		item := addProductLine(t, inv, testProduct("10", "0"), 1)
		require.NoError(t, inv.Send())
		_, err := inv.RecordPayment(testActor(), PaymentInput{Amount: dec("5")}, testDay)
		require.NoError(t, err)

		assert.True(t, errors.Is(inv.RemoveItem(item.ID), shared.ErrInvalidState))
		assert.True(t, errors.Is(inv.SetDiscount(dec("1")), shared.ErrInvalidState))
	})
}

func TestInvoice_Cancel(t *testing.T) {
	t.Run("draft cancels", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.Cancel())
		assert.Equal(t, InvoiceStatusCancelled, inv.Status)
		assert.True(t, errors.Is(inv.Cancel(), shared.ErrInvalidState))
	})

	t.Run("finalized invoice clears stock marker", func(t *testing.T) {
		inv := createTestInvoice(t)
		addProductLine(t, inv, testProduct("10", "0"), 1)
		require.NoError(t, inv.MarkFinalized())
		inv.ClearDomainEvents()

		require.NoError(t, inv.Cancel())
		assert.False(t, inv.StockApplied)
		ev, ok := inv.GetDomainEvents()[0].(*InvoiceCancelledEvent)
		require.True(t, ok)
		assert.True(t, ev.StockRestored)
		assert.NoError(t, inv.CanDelete())
	})

	t.Run("invoice with payments cannot be cancelled", func(t *testing.T) {
		inv := createTestInvoice(t)
		addProductLine(t, inv, testProduct("10", "0"), 1)
		require.NoError(t, inv.MarkFinalized())
		_, err := inv.RecordPayment(testActor(), PaymentInput{Amount: dec("1")}, testDay)
		require.NoError(t, err)

		assert.True(t, errors.Is(inv.CanCancel(), shared.ErrInvalidState))
	})
}

func TestInvoice_Overdue(t *testing.T) {
	inv := createTestInvoice(t)
	addProductLine(t, inv, testProduct("10", "0"), 1)

	afterDue := inv.DueDate.AddDate(0, 0, 1)
	assert.False(t, inv.IsOverdue(afterDue), "draft is never overdue")

	require.NoError(t, inv.MarkFinalized())
	assert.False(t, inv.IsOverdue(inv.DueDate.Add(23*time.Hour)), "due today is not overdue")
	assert.True(t, inv.IsOverdue(afterDue))
	assert.Equal(t, InvoiceStatusOverdue, inv.EffectiveStatus(afterDue))
	assert.Equal(t, InvoiceStatusDue, inv.Status, "overdue is never stored")

	_, err := inv.RecordPayment(testActor(), PaymentInput{Amount: dec("20")}, afterDue)
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPaid, inv.EffectiveStatus(afterDue))
}

func TestInvoice_SendAndCustomer(t *testing.T) {
	inv := createTestInvoice(t)
	require.NoError(t, inv.Send())
	assert.Equal(t, InvoiceStatusSent, inv.Status)
	assert.True(t, errors.Is(inv.Send(), shared.ErrInvalidState))

	newCustomer := uuid.New()
	require.NoError(t, inv.ChangeCustomer(newCustomer))
	assert.Equal(t, newCustomer, inv.CustomerID)
	assert.True(t, errors.Is(inv.ChangeCustomer(uuid.Nil), shared.ErrValidation))
}

// Scenario: stock 10, price 100, tax 18%, qty 3 -> 354 total, partial then paid.
func TestInvoice_EndToEndTotals(t *testing.T) {
	inv := createTestInvoice(t)
	addProductLine(t, inv, testProduct("100", "18"), 3)

	inv.CalculateTotals()
	assert.Equal(t, "300.00", inv.Subtotal.StringFixed(2))
	assert.Equal(t, "54.00", inv.TaxAmount.StringFixed(2))
	assert.Equal(t, "354.00", inv.TotalAmount.StringFixed(2))

	require.NoError(t, inv.MarkFinalized())
	assert.Equal(t, InvoiceStatusDue, inv.Status)

	require.NoError(t, inv.ApplyPayment(dec("200"), testDay))
	assert.Equal(t, InvoiceStatusPartial, inv.Status)
	require.NoError(t, inv.ApplyPayment(dec("154"), testDay))
	assert.Equal(t, "354.00", inv.PaidAmount.StringFixed(2))
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
}
