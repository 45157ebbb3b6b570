package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/inventory"
	"github.com/shopbill/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []StockAlert
	err    error
}

func (n *recordingNotifier) SendAlert(_ context.Context, alert StockAlert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
	return n.err
}

func (n *recordingNotifier) sent() []StockAlert {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]StockAlert(nil), n.alerts...)
}

func lowStockEvent(tenantID, productID uuid.UUID, stock int64) *inventory.StockBelowThresholdEvent {
	return &inventory.StockBelowThresholdEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(inventory.EventTypeStockBelowThreshold, inventory.AggregateTypeProduct, productID, tenantID),
		ProductID:       productID,
		SKU:             "RICE-5",
		Name:            "Rice 5kg",
		StockQuantity:   stock,
		Threshold:       10,
	}
}

func TestLowStockAlertHandler_Handle(t *testing.T) {
	tenantID, productID := uuid.New(), uuid.New()

	tests := []struct {
		name      string
		stock     int64
		level     AlertLevel
		shortfall int64
	}{
		{"below threshold", 4, AlertLevelLow, 6},
		{"at threshold", 10, AlertLevelLow, 0},
		{"sold out", 0, AlertLevelEmpty, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &recordingNotifier{}
			handler := NewLowStockAlertHandler(notifier, zaptest.NewLogger(t))
			event := lowStockEvent(tenantID, productID, tt.stock)

			require.NoError(t, handler.Handle(context.Background(), event))

			alerts := notifier.sent()
			require.Len(t, alerts, 1)
			alert := alerts[0]
			assert.Equal(t, tt.level, alert.Level)
			assert.Equal(t, tt.shortfall, alert.Shortfall)
			assert.Equal(t, tenantID.String(), alert.TenantID)
			assert.Equal(t, productID.String(), alert.ProductID)
			assert.Equal(t, "RICE-5", alert.SKU)
			assert.Equal(t, tt.stock, alert.StockQuantity)
			assert.Equal(t, event.OccurredAt(), alert.RaisedAt)
		})
	}
}

func TestLowStockAlertHandler_DeliveryFailureIsSwallowed(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	handler := NewLowStockAlertHandler(notifier, zaptest.NewLogger(t))

	err := handler.Handle(context.Background(), lowStockEvent(uuid.New(), uuid.New(), 2))

	assert.NoError(t, err)
	assert.Len(t, notifier.sent(), 1)
}

func TestLowStockAlertHandler_NilLogger(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	handler := NewLowStockAlertHandler(notifier, nil)

	assert.NotPanics(t, func() {
		assert.NoError(t, handler.Handle(context.Background(), lowStockEvent(uuid.New(), uuid.New(), 2)))
	})
	assert.Len(t, notifier.sent(), 1)

	fallback := NewLowStockAlertHandler(nil, nil)
	assert.NotPanics(t, func() {
		assert.NoError(t, fallback.Handle(context.Background(), lowStockEvent(uuid.New(), uuid.New(), 0)))
	})
}

func TestLowStockAlertHandler_RejectsOtherEvents(t *testing.T) {
	handler := NewLowStockAlertHandler(nil, zap.NewNop())

	err := handler.Handle(context.Background(), &inventory.StockChangedEvent{})

	assert.ErrorContains(t, err, "cannot handle")
	assert.Equal(t, []string{inventory.EventTypeStockBelowThreshold}, handler.EventTypes())
}

func TestLogStockAlertNotifier_SendAlert(t *testing.T) {
	notifier := NewLogStockAlertNotifier(zaptest.NewLogger(t))

	assert.NoError(t, notifier.SendAlert(context.Background(), StockAlert{
		TenantID:  uuid.New().String(),
		ProductID: uuid.New().String(),
		Level:     AlertLevelLow,
	}))
}
