package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"weekchain/pkg/kafka"
)

// Metrics counts publish and consume outcomes. Safe for concurrent use.
type Metrics struct {
	messagesPublished       atomic.Int64
	messagesPublishedFailed atomic.Int64
	publishDurationTotal    atomic.Int64

	messagesConsumed       atomic.Int64
	messagesConsumedFailed atomic.Int64
	consumeDurationTotal   atomic.Int64

	startedAt time.Time
}

type MetricsSnapshot struct {
	MessagesPublished       int64   `json:"messages_published"`
	MessagesPublishedFailed int64   `json:"messages_published_failed"`
	AvgPublishMillis        float64 `json:"avg_publish_ms"`
	MessagesConsumed        int64   `json:"messages_consumed"`
	MessagesConsumedFailed  int64   `json:"messages_consumed_failed"`
	AvgConsumeMillis        float64 `json:"avg_consume_ms"`
	ConsumeRatePerSecond    float64 `json:"consume_rate_per_second"`
	UptimeSeconds           float64 `json:"uptime_seconds"`
}

func NewMetrics() *Metrics {
	return &Metrics{startedAt: time.Now()}
}

func (m *Metrics) AvgPublishDuration() time.Duration {
	return average(m.publishDurationTotal.Load(), m.messagesPublished.Load()+m.messagesPublishedFailed.Load())
}

func (m *Metrics) AvgConsumeDuration() time.Duration {
	return average(m.consumeDurationTotal.Load(), m.messagesConsumed.Load()+m.messagesConsumedFailed.Load())
}

func average(total, count int64) time.Duration {
	if count == 0 {
		return 0
	}
	return time.Duration(total / count)
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	uptime := time.Since(m.startedAt).Seconds()
	consumed := m.messagesConsumed.Load()

	var rate float64
	if uptime > 0 {
		rate = float64(consumed) / uptime
	}
	return MetricsSnapshot{
		MessagesPublished:       m.messagesPublished.Load(),
		MessagesPublishedFailed: m.messagesPublishedFailed.Load(),
		AvgPublishMillis:        float64(m.AvgPublishDuration()) / float64(time.Millisecond),
		MessagesConsumed:        consumed,
		MessagesConsumedFailed:  m.messagesConsumedFailed.Load(),
		AvgConsumeMillis:        float64(m.AvgConsumeDuration()) / float64(time.Millisecond),
		ConsumeRatePerSecond:    rate,
		UptimeSeconds:           uptime,
	}
}

func (m *Metrics) ProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		m.publishDurationTotal.Add(int64(time.Since(start)))
		if err != nil {
			m.messagesPublishedFailed.Add(1)
		} else {
			m.messagesPublished.Add(1)
		}
		return err
	}
}

func (m *Metrics) ConsumerMiddleware() kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.consumeDurationTotal.Add(int64(time.Since(start)))
		if err != nil {
			m.messagesConsumedFailed.Add(1)
		} else {
			m.messagesConsumed.Add(1)
		}
		return err
	}
}
