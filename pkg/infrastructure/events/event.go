package events

import "time"

// AllEvents subscribes a handler to every event type
const AllEvents = "*"

// Event is something that already happened in the kitchen. Sequence counts
// events per stream, starting at 1, in publish order.
type Event interface {
	Type() string
	StreamID() string
	Data() interface{}
	Timestamp() time.Time
	Sequence() int
}

// EventHandler consumes dispatched events
type EventHandler interface {
	Handle(event Event) error
	CanHandle(eventType string) bool
}

// Publisher is the write side used by application services
type Publisher interface {
	Publish(event Event)
}

type record struct {
	kind     string
	stream   string
	data     interface{}
	at       time.Time
	sequence int
}

func (r record) Type() string         { return r.kind }
func (r record) StreamID() string     { return r.stream }
func (r record) Data() interface{}    { return r.data }
func (r record) Timestamp() time.Time { return r.at }
func (r record) Sequence() int        { return r.sequence }

// NewEvent stamps data with the current time. The bus assigns the sequence.
func NewEvent(eventType, streamID string, data interface{}) Event {
	return record{kind: eventType, stream: streamID, data: data, at: time.Now().UTC(), sequence: 1}
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}
