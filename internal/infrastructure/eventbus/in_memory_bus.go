package eventbus

import (
	"context"
	"sync"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/event"
)

type HandlerFunc func(context.Context, event.Event) error

// InMemoryBus delivers events synchronously, in subscription order. The first
// handler error stops delivery and is returned to the publisher.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[event.Type][]HandlerFunc
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[event.Type][]HandlerFunc),
	}
}

func (b *InMemoryBus) Subscribe(eventType event.Type, handler HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

func (b *InMemoryBus) Publish(ctx context.Context, evt event.Event) error {
	b.mu.RLock()
	handlers := b.handlers[evt.Type]
	b.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, evt); err != nil {
			return err
		}
	}

	return nil
}

// Record lets the bus stand in for an outbox recorder when no durable store is configured.
func (b *InMemoryBus) Record(ctx context.Context, evt event.Event) error {
	return b.Publish(ctx, evt)
}
