package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopbill/backend/internal/domain/inventory"
	"github.com/shopbill/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AlertLevel grades how urgent a low-stock alert is
type AlertLevel string

const (
	AlertLevelLow   AlertLevel = "low_stock"
	AlertLevelEmpty AlertLevel = "out_of_stock"
)

// StockAlert is what a shop owner is told about a product running out
type StockAlert struct {
	TenantID      string     `json:"tenant_id"`
	ProductID     string     `json:"product_id"`
	SKU           string     `json:"sku"`
	Name          string     `json:"name"`
	StockQuantity int64      `json:"stock_quantity"`
	Threshold     int64      `json:"threshold"`
	Shortfall     int64      `json:"shortfall"`
	Level         AlertLevel `json:"level"`
	RaisedAt      time.Time  `json:"raised_at"`
}

// StockAlertNotifier delivers low-stock alerts
type StockAlertNotifier interface {
	SendAlert(ctx context.Context, alert StockAlert) error
}

// LowStockAlertHandler turns StockBelowThreshold events into alerts.
// Delivery failures are logged and swallowed; the stock change that raised
// the event has already been committed.
type LowStockAlertHandler struct {
	notifier StockAlertNotifier
	logger   *zap.Logger
}

// NewLowStockAlertHandler creates the handler. A nil notifier falls back to
// logging the alert.
func NewLowStockAlertHandler(notifier StockAlertNotifier, logger *zap.Logger) *LowStockAlertHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = NewLogStockAlertNotifier(logger)
	}
	return &LowStockAlertHandler{notifier: notifier, logger: logger}
}

func (h *LowStockAlertHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockBelowThreshold}
}

func (h *LowStockAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*inventory.StockBelowThresholdEvent)
	if !ok {
		return fmt.Errorf("low stock alert: cannot handle %s event", event.EventType())
	}

	alert := alertFromEvent(e)
	if err := h.notifier.SendAlert(ctx, alert); err != nil {
		h.logger.Error("Failed to deliver low stock alert",
			zap.String("tenant_id", alert.TenantID),
			zap.String("product_id", alert.ProductID),
			zap.Error(err),
		)
	}
	return nil
}

func alertFromEvent(e *inventory.StockBelowThresholdEvent) StockAlert {
	level := AlertLevelLow
	if e.StockQuantity <= 0 {
		level = AlertLevelEmpty
	}
	return StockAlert{
		TenantID:      e.TenantID().String(),
		ProductID:     e.ProductID.String(),
		SKU:           e.SKU,
		Name:          e.Name,
		StockQuantity: e.StockQuantity,
		Threshold:     e.Threshold,
		Shortfall:     max(e.Threshold-e.StockQuantity, 0),
		Level:         level,
		RaisedAt:      e.OccurredAt(),
	}
}

var _ shared.EventHandler = (*LowStockAlertHandler)(nil)

// LogStockAlertNotifier writes alerts to the application log
type LogStockAlertNotifier struct {
	logger *zap.Logger
}

func NewLogStockAlertNotifier(logger *zap.Logger) *LogStockAlertNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogStockAlertNotifier{logger: logger}
}

func (n *LogStockAlertNotifier) SendAlert(_ context.Context, alert StockAlert) error {
	n.logger.Warn("Low stock",
		zap.String("level", string(alert.Level)),
		zap.String("tenant_id", alert.TenantID),
		zap.String("product_id", alert.ProductID),
		zap.String("sku", alert.SKU),
		zap.String("name", alert.Name),
		zap.Int64("stock_quantity", alert.StockQuantity),
		zap.Int64("threshold", alert.Threshold),
		zap.Int64("shortfall", alert.Shortfall),
	)
	return nil
}
