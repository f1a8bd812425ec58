// Package events implements the in-process notification bus. The bus is
// owned by the composition root and passed to emitters and subscribers
// explicitly; there is no package-level instance.
package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/leaf-cloud/straindex/internal/domain"
	"github.com/leaf-cloud/straindex/internal/metrics"
)

// Wildcard subscribes a handler to every emitted event.
const Wildcard = "*"

// Handler consumes a dispatched event. Returned errors are logged and
// never propagate to the emitter or to sibling handlers.
type Handler func(ctx context.Context, event *domain.UserEvent) error

// Bus fans out user events to subscribed handlers. Each Emit produces
// exactly three notifications: the exact event type, the event's
// category name, and the wildcard.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
}

// NewBus creates an empty bus.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for a pattern: an exact event type
// (e.g. "terpene_viewed"), a category name (e.g. "learning"), or the
// wildcard "*". Handlers run synchronously in subscription order.
func (b *Bus) Subscribe(pattern string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[pattern] = append(b.handlers[pattern], h)
}

// Emit dispatches the event synchronously. The three notification
// patterns fire in a fixed order: exact type, category, wildcard.
func (b *Bus) Emit(ctx context.Context, event *domain.UserEvent) {
	b.dispatch(ctx, event.EventType, event, "exact")
	b.dispatch(ctx, string(event.Category), event, "category")
	b.dispatch(ctx, Wildcard, event, "wildcard")
}

// EmitAsync dispatches the event in a goroutine, detaching it from the
// caller's request path. The context is not carried over: handlers get a
// fresh background context so request cancellation cannot cut them off.
func (b *Bus) EmitAsync(event *domain.UserEvent) {
	go b.Emit(context.Background(), event)
}

func (b *Bus) dispatch(ctx context.Context, pattern string, event *domain.UserEvent, kind string) {
	b.mu.RLock()
	hs := b.handlers[pattern]
	b.mu.RUnlock()

	metrics.EventNotificationsTotal.WithLabelValues(kind).Inc()

	for _, h := range hs {
		b.runHandler(ctx, pattern, h, event)
	}
}

// runHandler isolates a single handler call: errors are logged, panics
// are recovered so one bad subscriber cannot break the fan-out.
func (b *Bus) runHandler(ctx context.Context, pattern string, h Handler, event *domain.UserEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panicked",
				zap.String("pattern", pattern),
				zap.String("event_type", event.EventType),
				zap.Any("panic", r),
			)
		}
	}()

	if err := h(ctx, event); err != nil {
		b.logger.Warn("Event handler failed",
			zap.String("pattern", pattern),
			zap.String("event_type", event.EventType),
			zap.Error(err),
		)
	}
}
