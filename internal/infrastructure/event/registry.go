package event

import (
	"slices"
	"sync"

	"github.com/shopbill/backend/internal/domain/shared"
)

// HandlerRegistry records which handlers want which event types. A handler
// subscribed without event types receives every event.
type HandlerRegistry struct {
	mu   sync.RWMutex
	subs []subscription
}

type subscription struct {
	handler shared.EventHandler
	types   []string // empty means every type
}

func (s subscription) wants(eventType string) bool {
	return slices.Contains(s.types, eventType)
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{}
}

func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, subscription{handler: handler, types: slices.Clone(eventTypes)})
}

// Unregister drops every subscription of handler
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = slices.DeleteFunc(r.subs, func(s subscription) bool { return s.handler == handler })
}

// HandlersFor returns the handlers subscribed to eventType, in registration
// order, followed by the catch-all handlers.
func (r *HandlerRegistry) HandlersFor(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var typed, all []shared.EventHandler
	for _, s := range r.subs {
		switch {
		case len(s.types) == 0:
			all = append(all, s.handler)
		case s.wants(eventType):
			typed = append(typed, s.handler)
		}
	}
	return append(typed, all...)
}

// Len returns the number of distinct registered handlers
func (r *HandlerRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[shared.EventHandler]struct{}, len(r.subs))
	for _, s := range r.subs {
		seen[s.handler] = struct{}{}
	}
	return len(seen)
}
