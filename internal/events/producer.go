package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const producerSource = "service-booking"

// Producer writes booking events to Kafka.
type Producer struct {
	writer *kafkago.Writer
	logger *zap.Logger
}

// NewProducer creates a Producer for the given brokers.
func NewProducer(brokers []string, logger *zap.Logger) *Producer {
	writer := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  TopicBookingEvents,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &Producer{writer: writer, logger: logger}
}

// Publish wraps the payload in an Envelope and writes it keyed by the
// booking id. Failures are logged and swallowed: event delivery is
// best-effort and must not block or fail the request that produced it.
func (p *Producer) Publish(ctx context.Context, eventType, key string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("failed to marshal event payload",
			zap.String("type", eventType),
			zap.Error(err),
		)
		return
	}

	envelope := Envelope{
		ID:     uuid.NewString(),
		Type:   eventType,
		Source: producerSource,
		Time:   time.Now().UTC(),
		Data:   data,
	}

	value, err := json.Marshal(envelope)
	if err != nil {
		p.logger.Error("failed to marshal event envelope",
			zap.String("type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(key),
		Value: value,
	}); err != nil {
		p.logger.Error("failed to publish booking event",
			zap.String("type", eventType),
			zap.String("key", key),
			zap.Error(err),
		)
		return
	}

	p.logger.Debug("booking event published",
		zap.String("type", eventType),
		zap.String("key", key),
	)
}

// Close closes the underlying Kafka writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
