package events

import (
	"context"
	"sync"
)

// HandlerFunc processes an event message.
type HandlerFunc func(ctx context.Context, msg []byte) error

// Publisher publishes events to topics.
type Publisher interface {
	Publish(ctx context.Context, topic string, msg []byte) error
}

// Subscriber subscribes to topics and processes events.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler HandlerFunc) error
}

// Bus is an in-process Publisher/Subscriber used for context lifecycle
// notifications. Delivery is synchronous and in subscription order; handler
// errors do not stop delivery to later handlers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]HandlerFunc
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]HandlerFunc)}
}

// Subscribe registers a handler for the given topic.
func (b *Bus) Subscribe(_ context.Context, topic string, handler HandlerFunc) error {
	if topic == "" || handler == nil {
		return nil
	}
	b.mu.Lock()
	b.handlers[topic] = append(b.handlers[topic], handler)
	b.mu.Unlock()
	return nil
}

// Publish delivers msg to every handler subscribed to topic. The last
// handler error, if any, is returned.
func (b *Bus) Publish(ctx context.Context, topic string, msg []byte) error {
	b.mu.RLock()
	handlers := append([]HandlerFunc(nil), b.handlers[topic]...)
	b.mu.RUnlock()

	var lastErr error
	for _, handler := range handlers {
		if err := handler(ctx, msg); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
