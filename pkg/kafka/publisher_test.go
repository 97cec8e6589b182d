package kafka

import (
	"context"
	"testing"

	kafka_config "weekchain/pkg/kafka/config"
)

type recordingPublisher struct {
	messages []Message
}

func (p *recordingPublisher) Publish(_ context.Context, msg Message) error {
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestNewPublisherDisabledIsNoop(t *testing.T) {
	cfg := kafka_config.Default()
	cfg.Enabled = false

	p, err := NewPublisher(cfg, testLogger(), "capacity-events", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(NoopPublisher); !ok {
		t.Fatalf("expected NoopPublisher, got %T", p)
	}
	if err := p.Publish(context.Background(), Message{}); err != nil {
		t.Errorf("noop publish should never fail: %v", err)
	}
}

func TestNewPublisherRejectsMissingTopic(t *testing.T) {
	if _, err := NewPublisher(kafka_config.Default(), testLogger(), "", ""); err == nil {
		t.Error("expected error for empty topic")
	}
}

func TestPublishEventCarriesHeaders(t *testing.T) {
	rec := &recordingPublisher{}
	ctx := WithCorrelationID(context.Background(), "req-9")

	err := PublishEvent(ctx, rec, "Gold", "capacity.changed", "capacity", map[string]string{"tier": "Gold"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.messages) != 1 {
		t.Fatalf("published %d messages", len(rec.messages))
	}
	msg := rec.messages[0]
	if msg.Key != "Gold" || msg.GetEventType() != "capacity.changed" || msg.GetCorrelationID() != "req-9" {
		t.Errorf("unexpected message %+v", msg)
	}
	if src := msg.Headers[HeaderSource]; src != "capacity" {
		t.Errorf("source = %q", src)
	}
	var decoded map[string]string
	if err := msg.DecodeValue(&decoded); err != nil || decoded["tier"] != "Gold" {
		t.Errorf("payload = %v, err = %v", decoded, err)
	}
}

func TestPublishRequiresKey(t *testing.T) {
	p, err := NewProducer(kafka_config.Default(), testLogger(), "capacity-events", "")
	if err != nil {
		t.Fatalf("NewProducer: %v", err)
	}
	defer p.Close()

	if err := p.Publish(context.Background(), Message{Value: []byte("x")}); err != ErrEmptyKey {
		t.Errorf("expected ErrEmptyKey, got %v", err)
	}
	if err := p.Publish(context.Background(), Message{Key: "k"}); err != ErrEmptyValue {
		t.Errorf("expected ErrEmptyValue, got %v", err)
	}
	_ = p.Close()
	if err := p.Publish(context.Background(), Message{Key: "k", Value: []byte("v")}); err != ErrProducerClosed {
		t.Errorf("expected ErrProducerClosed, got %v", err)
	}
}
