package event

import (
	"context"
	"fmt"
	"time"

	"github.com/shopbill/backend/internal/domain/billing"
	"github.com/shopbill/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LowStockAlertKey allows one low-stock alert per product and calendar day
func LowStockAlertKey(event shared.DomainEvent) string {
	return fmt.Sprintf("low-stock:%s:%s:%s",
		event.TenantID(), event.AggregateID(), shared.Today(event.OccurredAt()).Format("2006-01-02"))
}

// InvoiceActivityHandler writes an audit log line for every invoice
// lifecycle event
type InvoiceActivityHandler struct {
	logger *zap.Logger
}

// NewInvoiceActivityHandler creates a new InvoiceActivityHandler
func NewInvoiceActivityHandler(logger *zap.Logger) *InvoiceActivityHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceActivityHandler{logger: logger.Named("invoice_activity")}
}

// EventTypes returns the event types this handler is interested in
func (h *InvoiceActivityHandler) EventTypes() []string {
	return []string{
		billing.EventTypeInvoiceCreated,
		billing.EventTypeInvoiceSent,
		billing.EventTypeInvoiceFinalized,
		billing.EventTypePaymentRecorded,
		billing.EventTypeInvoicePaid,
		billing.EventTypeInvoiceCancelled,
	}
}

// Handle logs the event with the fields relevant to its type
func (h *InvoiceActivityHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("tenant_id", event.TenantID().String()),
		zap.String("invoice_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt().UTC().Truncate(time.Second)),
	}

	switch e := event.(type) {
	case *billing.InvoiceCreatedEvent:
		fields = append(fields, zap.String("invoice_number", e.InvoiceNumber))
	case *billing.InvoiceFinalizedEvent:
		fields = append(fields,
			zap.String("invoice_number", e.InvoiceNumber),
			zap.String("total_amount", e.TotalAmount.StringFixed(2)),
			zap.Int("item_count", e.ItemCount),
		)
	case *billing.PaymentRecordedEvent:
		fields = append(fields,
			zap.String("invoice_number", e.InvoiceNumber),
			zap.String("amount", e.Amount.StringFixed(2)),
			zap.String("method", string(e.Method)),
			zap.String("status", string(e.Status)),
		)
	case *billing.InvoicePaidEvent:
		fields = append(fields, zap.String("invoice_number", e.InvoiceNumber))
	case *billing.InvoiceCancelledEvent:
		fields = append(fields,
			zap.String("invoice_number", e.InvoiceNumber),
			zap.Bool("stock_restored", e.StockRestored),
		)
	}

	h.logger.Info("invoice activity", fields...)
	return nil
}
