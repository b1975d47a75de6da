// Package messaging forwards kitchen domain events to a Kafka topic.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/vsinha/kitchen/pkg/infrastructure/events"
	"go.uber.org/zap"
)

const writeTimeout = 5 * time.Second

// MessageWriter is the subset of kafka.Writer the publisher needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Envelope is the JSON value written for every event
type Envelope struct {
	Type      string      `json:"type"`
	StreamID  string      `json:"stream_id"`
	Sequence  int         `json:"sequence"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// KafkaPublisher is an event handler writing every event it receives to Kafka
type KafkaPublisher struct {
	writer MessageWriter
	logger *zap.Logger
}

var _ events.EventHandler = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher writing to topic on brokers
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Compression:  kafka.Snappy,
	}
	return NewPublisherWithWriter(writer, logger)
}

// NewPublisherWithWriter wraps an existing writer
func NewPublisherWithWriter(writer MessageWriter, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, logger: logger}
}

func (p *KafkaPublisher) CanHandle(eventType string) bool {
	return true
}

// Handle writes the event keyed by its stream so one ingredient's updates stay ordered
func (p *KafkaPublisher) Handle(event events.Event) error {
	message, err := ToMessage(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write %s event to kafka: %w", event.Type(), err)
	}
	p.logger.Debug("event forwarded to kafka", zap.String("event_type", event.Type()), zap.String("stream_id", event.StreamID()))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// ToMessage encodes an event as a Kafka message
func ToMessage(event events.Event) (kafka.Message, error) {
	value, err := json.Marshal(Envelope{
		Type:      event.Type(),
		StreamID:  event.StreamID(),
		Sequence:  event.Sequence(),
		Timestamp: event.Timestamp(),
		Data:      event.Data(),
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal %s event: %w", event.Type(), err)
	}

	return kafka.Message{
		Key:   []byte(event.StreamID()),
		Value: value,
		Time:  event.Timestamp(),
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type())},
		},
	}, nil
}
