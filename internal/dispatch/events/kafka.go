// Package events publishes dispatch lifecycle events to Kafka.
package events

import (
	"context"

	"hearth/internal/dispatch/service"
	"hearth/pkg/kafka"
	kafka_config "hearth/pkg/kafka/config"
	kafka_middleware "hearth/pkg/kafka/middleware"
	"hearth/pkg/logger"
	"hearth/pkg/middleware"
)

// KafkaPublisher adapts the Kafka producer to the dispatch event interface.
// Messages are keyed by booking ID so events for one booking stay ordered
// within a partition.
type KafkaPublisher struct {
	producer *kafka.Producer
}

func NewKafkaPublisher(topic, dlqTopic string, log *logger.Logger) (*KafkaPublisher, error) {
	producer, err := kafka.NewProducer(kafka_config.Load(), topic, dlqTopic)
	if err != nil {
		return nil, err
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(log))

	return &KafkaPublisher{producer: producer}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	builder := kafka.NewMessage().
		WithKey(key).
		WithValue(payload).
		WithEventType(eventType).
		WithSource("dispatch")

	if requestID := middleware.RequestID(ctx); requestID != "" {
		builder.WithCorrelationID(requestID)
	}

	return p.producer.Publish(ctx, builder.Build())
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// NopPublisher drops every event. Used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, any) error { return nil }

var _ service.EventPublisher = (*KafkaPublisher)(nil)
var _ service.EventPublisher = NopPublisher{}
