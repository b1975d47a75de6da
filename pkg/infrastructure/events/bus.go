package events

import (
	"sync"

	"go.uber.org/zap"
)

// Bus fans published events out to subscribed handlers. Nothing is
// retained: an event reaches the handlers subscribed when it was published.
type Bus struct {
	mu          sync.Mutex
	sequences   map[string]int
	subscribers map[string][]EventHandler
	inflight    sync.WaitGroup
	logger      *zap.Logger
}

// NewBus creates an empty bus
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		sequences:   make(map[string]int),
		subscribers: make(map[string][]EventHandler),
		logger:      logger,
	}
}

var _ Publisher = (*Bus)(nil)

// Subscribe registers handler for the given event types; AllEvents matches any
func (b *Bus) Subscribe(eventTypes []string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, eventType := range eventTypes {
		b.subscribers[eventType] = append(b.subscribers[eventType], handler)
	}
}

// Publish stamps the event with its stream sequence and hands it to every
// matching handler in its own goroutine
func (b *Bus) Publish(event Event) {
	if event.StreamID() == "" {
		b.logger.Error("dropping event without stream", zap.String("type", event.Type()))
		return
	}

	b.mu.Lock()
	b.sequences[event.StreamID()]++
	stamped := record{
		kind:     event.Type(),
		stream:   event.StreamID(),
		data:     event.Data(),
		at:       event.Timestamp(),
		sequence: b.sequences[event.StreamID()],
	}
	handlers := append(append([]EventHandler(nil), b.subscribers[stamped.kind]...), b.subscribers[AllEvents]...)
	for _, handler := range handlers {
		if handler.CanHandle(stamped.kind) {
			b.inflight.Add(1)
			go b.dispatch(handler, stamped)
		}
	}
	b.mu.Unlock()
}

// Wait blocks until every dispatched handler call has returned
func (b *Bus) Wait() {
	b.inflight.Wait()
}

func (b *Bus) dispatch(handler EventHandler, event Event) {
	defer b.inflight.Done()
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked", zap.String("type", event.Type()), zap.Any("panic", r))
		}
	}()

	if err := handler.Handle(event); err != nil {
		b.logger.Warn("error handling event",
			zap.String("type", event.Type()),
			zap.String("stream", event.StreamID()),
			zap.Error(err),
		)
	}
}
