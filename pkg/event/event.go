// Package event provides an in-process publish/subscribe dispatcher.
//
//	bus := event.New()
//	bus.Listen("order.created", func(ctx context.Context, p any) { ... })
//	bus.Fire(ctx, "order.created", payload)
package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// Handler receives an event payload.
type Handler func(ctx context.Context, payload any)

// Bus dispatches named events to registered handlers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

// Listen registers handler for name.
func (b *Bus) Listen(name string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], handler)
}

func (b *Bus) snapshot(name string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Handler(nil), b.handlers[name]...)
}

// Fire runs every handler for name in registration order on the caller's
// goroutine. A panicking handler is logged and skipped.
func (b *Bus) Fire(ctx context.Context, name string, payload any) {
	for _, h := range b.snapshot(name) {
		b.call(ctx, name, h, payload)
	}
}

func (b *Bus) call(ctx context.Context, name string, h Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithCtx(ctx).Error("event: listener panicked", "event", name, "panic", fmt.Sprintf("%v", r))
		}
	}()
	h(ctx, payload)
}
