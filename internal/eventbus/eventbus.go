package eventbus

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// EventType is an identifier for bus events.
type EventType string

// Event is the envelope published on the bus. Data carries a payload from
// events.go.
type Event struct {
	ctx       context.Context
	Type      EventType
	Timestamp time.Time
	Data      any
}

// NewEvent creates an Event with the current timestamp.
func NewEvent(ctx context.Context, eventType EventType, data any) Event {
	return Event{
		ctx:       ctx,
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// Context returns the context the event was published with.
func (e Event) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

type handler func(Event) error

// Bus is a concurrency-safe synchronous dispatcher. Handlers run sequentially
// during Publish, in registration order.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]handler
}

func New() *Bus {
	return &Bus{
		subscribers: make(map[EventType][]handler),
	}
}

// Subscribe registers a handler for the given event type.
func (b *Bus) Subscribe(eventType EventType, h func(Event) error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], h)
}

// Publish sends the event to every handler registered for its type. Handler
// errors and panics are logged and do not stop the remaining handlers; mutation
// notifications must never fail the operation that produced them.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := make([]handler, len(b.subscribers[e.Type]))
	copy(handlers, b.subscribers[e.Type])
	b.mu.RUnlock()

	for i, h := range handlers {
		err := func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("handler panic for event %s: %v", e.Type, r)
				}
			}()
			return h(e)
		}()
		if err != nil {
			log.Errorf("eventbus: handler %d failed for event %s: %v", i, e.Type, err)
		}
	}
}
