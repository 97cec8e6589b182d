package kafka

import (
	"context"

	kafka_config "weekchain/pkg/kafka/config"
	"weekchain/pkg/logger"
)

// Publisher is what domain services depend on to emit events.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// NoopPublisher drops every message. Used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Message) error { return nil }
func (NoopPublisher) Close() error                           { return nil }

// NewPublisher returns a producer for topic with the given middleware installed,
// or a NoopPublisher when cfg disables Kafka.
func NewPublisher(cfg *kafka_config.Config, log *logger.Logger, topic, dlqTopic string, middleware ...ProducerMiddleware) (Publisher, error) {
	if cfg == nil || !cfg.Enabled {
		log.Warn("Kafka disabled, events will not be published", "topic", topic)
		return NoopPublisher{}, nil
	}
	producer, err := NewProducer(cfg, log, topic, dlqTopic)
	if err != nil {
		return nil, err
	}
	if cfg.EnableMiddleware {
		for _, m := range middleware {
			producer.Use(m)
		}
	}
	return producer, nil
}

// PublishEvent encodes payload as JSON and publishes it keyed by key.
func PublishEvent(ctx context.Context, p Publisher, key, eventType, source string, payload any) error {
	msg, err := NewMessage().
		WithKey(key).
		WithValue(payload).
		WithEventType(eventType).
		WithSource(source).
		WithCorrelationID(CorrelationIDFromContext(ctx)).
		BuildChecked()
	if err != nil {
		return err
	}
	return p.Publish(ctx, msg)
}

type correlationKey struct{}

func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}
