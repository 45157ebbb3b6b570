package event

import (
	"context"
	"time"

	"github.com/shopbill/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// KeyFunc derives the deduplication key of an event. An empty key means the
// event is always handled.
type KeyFunc func(event shared.DomainEvent) string

// ByEventID deduplicates redeliveries of the same event
func ByEventID(event shared.DomainEvent) string {
	return "event:" + event.EventID().String()
}

// IdempotentHandler wraps a handler so that events sharing a key are handled
// once per TTL. The key is claimed before the handler runs and released when
// the handler fails, so a failed delivery can be retried.
type IdempotentHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	key     KeyFunc
	ttl     time.Duration
	logger  *zap.Logger
}

// IdempotentHandlerOption configures an IdempotentHandler
type IdempotentHandlerOption func(*IdempotentHandler)

// WithKeyFunc sets how the deduplication key is derived
func WithKeyFunc(key KeyFunc) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		h.key = key
	}
}

// WithTTL sets how long a handled key suppresses duplicates
func WithTTL(ttl time.Duration) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		h.ttl = ttl
	}
}

// NewIdempotentHandler wraps handler with store-backed deduplication
func NewIdempotentHandler(handler shared.EventHandler, store shared.IdempotencyStore, logger *zap.Logger, opts ...IdempotentHandlerOption) *IdempotentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &IdempotentHandler{
		handler: handler,
		store:   store,
		key:     ByEventID,
		ttl:     shared.DefaultIdempotencyConfig().TTL,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// EventTypes returns the wrapped handler's event types
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle runs the wrapped handler unless the event's key was already claimed.
// If the store is unavailable the event is handled anyway.
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	key := h.key(event)
	if key == "" {
		return h.handler.Handle(ctx, event)
	}

	isNew, err := h.store.MarkProcessed(ctx, key, h.ttl)
	if err != nil {
		h.logger.Warn("idempotency store unavailable, handling event anyway",
			zap.String("key", key),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
		return h.handler.Handle(ctx, event)
	}
	if !isNew {
		h.logger.Debug("duplicate event skipped",
			zap.String("key", key),
			zap.String("event_type", event.EventType()),
		)
		return nil
	}

	if err := h.handler.Handle(ctx, event); err != nil {
		if releaseErr := h.store.Release(ctx, key); releaseErr != nil {
			h.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(releaseErr))
		}
		return err
	}
	return nil
}

// Ensure IdempotentHandler implements EventHandler
var _ shared.EventHandler = (*IdempotentHandler)(nil)
