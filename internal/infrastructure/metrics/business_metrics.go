package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopbill/backend/internal/domain/billing"
	"github.com/shopbill/backend/internal/domain/inventory"
	"github.com/shopbill/backend/internal/domain/shared"
)

// BusinessMetrics counts billing and stock activity. It subscribes to the
// event bus, so counters only move for committed changes.
type BusinessMetrics struct {
	invoicesCreated   prometheus.Counter
	invoicesFinalized prometheus.Counter
	invoicesCancelled *prometheus.CounterVec
	invoicesPaid      prometheus.Counter
	invoicedAmount    prometheus.Counter
	payments          *prometheus.CounterVec
	paymentAmount     *prometheus.CounterVec
	stockMovements    *prometheus.CounterVec
	lowStockAlerts    prometheus.Counter
}

// NewBusinessMetrics creates and registers the business collectors
func NewBusinessMetrics(reg prometheus.Registerer) *BusinessMetrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Namespace: Namespace, Name: name, Help: help})
	}
	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: Namespace, Name: name, Help: help}, labels)
	}

	m := &BusinessMetrics{
		invoicesCreated:   counter("invoices_created_total", "Invoices created"),
		invoicesFinalized: counter("invoices_finalized_total", "Invoices finalized with stock applied"),
		invoicesCancelled: counterVec("invoices_cancelled_total", "Invoices cancelled", "stock_restored"),
		invoicesPaid:      counter("invoices_paid_total", "Invoices that became fully paid"),
		invoicedAmount:    counter("invoiced_amount_total", "Sum of finalized invoice totals"),
		payments:          counterVec("payments_total", "Payments recorded", "method", "invoice_status"),
		paymentAmount:     counterVec("payment_amount_total", "Sum of recorded payment amounts", "method"),
		stockMovements:    counterVec("stock_movements_total", "Stock movements written", "type", "source"),
		lowStockAlerts:    counter("low_stock_alerts_total", "Products that fell to their low-stock threshold"),
	}
	reg.MustRegister(
		m.invoicesCreated, m.invoicesFinalized, m.invoicesCancelled, m.invoicesPaid,
		m.invoicedAmount, m.payments, m.paymentAmount, m.stockMovements, m.lowStockAlerts,
	)
	return m
}

// EventTypes returns the event types this handler is interested in
func (m *BusinessMetrics) EventTypes() []string {
	return []string{
		billing.EventTypeInvoiceCreated,
		billing.EventTypeInvoiceFinalized,
		billing.EventTypePaymentRecorded,
		billing.EventTypeInvoicePaid,
		billing.EventTypeInvoiceCancelled,
		inventory.EventTypeStockChanged,
		inventory.EventTypeStockBelowThreshold,
	}
}

// Handle updates the counters for one event
func (m *BusinessMetrics) Handle(_ context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *billing.InvoiceCreatedEvent:
		m.invoicesCreated.Inc()
	case *billing.InvoiceFinalizedEvent:
		m.invoicesFinalized.Inc()
		m.invoicedAmount.Add(e.TotalAmount.InexactFloat64())
	case *billing.PaymentRecordedEvent:
		m.payments.WithLabelValues(string(e.Method), string(e.Status)).Inc()
		m.paymentAmount.WithLabelValues(string(e.Method)).Add(e.Amount.InexactFloat64())
	case *billing.InvoicePaidEvent:
		m.invoicesPaid.Inc()
	case *billing.InvoiceCancelledEvent:
		restored := "false"
		if e.StockRestored {
			restored = "true"
		}
		m.invoicesCancelled.WithLabelValues(restored).Inc()
	case *inventory.StockChangedEvent:
		m.stockMovements.WithLabelValues(string(e.MovementType), string(e.SourceType)).Inc()
	case *inventory.StockBelowThresholdEvent:
		m.lowStockAlerts.Inc()
	}
	return nil
}

var _ shared.EventHandler = (*BusinessMetrics)(nil)
