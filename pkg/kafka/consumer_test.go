package kafka

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"weekchain/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// ──────────────────────────── Fakes ────────────────────────────

type fakeReader struct {
	mu        sync.Mutex
	messages  []kafka.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		r.cancel()
		return kafka.Message{}, context.Canceled
	}
	msg := r.messages[0]
	r.messages = r.messages[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Stats() kafka.ReaderStats { return kafka.ReaderStats{Lag: 4} }
func (r *fakeReader) Close() error             { return nil }

type fakeWriter struct {
	mu      sync.Mutex
	written []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Output: &bytes.Buffer{}})
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// ──────────────────────────── Tests ────────────────────────────

func TestProcessMessageRetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	handler := func(context.Context, Message) error {
		calls++
		if calls < 3 {
			return NewTransientError("store", errors.New("timeout"))
		}
		return nil
	}
	c := newConsumer(&fakeReader{}, testLogger(), "capacity-events", "auditor", 3, 0, handler)

	msg := NewMessage().WithKey("Gold").WithValue("x").Build()
	if err := c.processMessage(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("handler calls = %d, want 3", calls)
	}
}

func TestProcessMessageSendsPermanentFailureToDLQ(t *testing.T) {
	dlq := &fakeWriter{}
	calls := 0
	handler := func(context.Context, Message) error {
		calls++
		return NewPermanentError("bad payload", nil)
	}
	c := newConsumer(&fakeReader{}, testLogger(), "capacity-events", "auditor", 3, 0, handler)
	c.dlqWriter = dlq
	c.dlqTopic = "weekchain-dlq"

	msg := NewMessage().WithKey("Gold").WithValue("x").Build()
	if err := c.processMessage(context.Background(), msg); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("permanent errors must not be retried, calls = %d", calls)
	}
	if len(dlq.written) != 1 {
		t.Fatalf("dlq writes = %d, want 1", len(dlq.written))
	}
	written := dlq.written[0]
	if header(written, HeaderOriginalTopic) != "capacity-events" || header(written, HeaderDLQConsumerGroup) != "auditor" {
		t.Errorf("missing dlq headers: %+v", written.Headers)
	}
	if _, ok := msg.Headers[HeaderDLQError]; ok {
		t.Error("caller's headers must not be mutated")
	}
}

func TestProcessMessageGivesUpAfterMaxRetries(t *testing.T) {
	dlq := &fakeWriter{}
	calls := 0
	handler := func(context.Context, Message) error {
		calls++
		return errors.New("connection reset by peer")
	}
	c := newConsumer(&fakeReader{}, testLogger(), "t", "g", 2, time.Millisecond, handler)
	c.dlqWriter = dlq

	_ = c.processMessage(context.Background(), NewMessage().WithKey("k").WithValue("v").Build())
	if calls != 3 {
		t.Errorf("calls = %d, want initial attempt plus 2 retries", calls)
	}
	if header(dlq.written[0], HeaderRetryCount) != "2" {
		t.Errorf("retry count header = %q", header(dlq.written[0], HeaderRetryCount))
	}
}

func TestStartCommitsEveryMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		messages: []kafka.Message{
			{Key: []byte("Gold"), Value: []byte(`{}`), Offset: 10},
			{Key: []byte("Silver"), Value: []byte(`{}`), Offset: 11},
		},
		cancel: cancel,
	}
	var seen []string
	handler := func(_ context.Context, msg Message) error {
		seen = append(seen, msg.Key)
		if msg.Key == "Silver" {
			return NewPermanentError("reject", nil)
		}
		return nil
	}
	c := newConsumer(reader, testLogger(), "t", "g", 0, 0, handler)

	err := c.Start(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Start returned %v", err)
	}
	if len(seen) != 2 {
		t.Errorf("handled %v", seen)
	}
	if len(reader.committed) != 2 || reader.committed[1] != 11 {
		t.Errorf("committed offsets = %v", reader.committed)
	}
	if c.Lag() != 4 {
		t.Errorf("Lag = %d", c.Lag())
	}
}

func TestMiddlewareWrapsHandlerInOrder(t *testing.T) {
	var order []string
	handler := func(context.Context, Message) error {
		order = append(order, "handler")
		return nil
	}
	c := newConsumer(&fakeReader{}, testLogger(), "t", "g", 0, 0, handler)
	c.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
		order = append(order, "outer")
		return next(ctx, msg)
	})
	c.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
		order = append(order, "inner")
		return next(ctx, msg)
	})

	_ = c.processMessage(context.Background(), NewMessage().WithKey("k").WithValue("v").Build())
	if len(order) != 3 || order[0] != "outer" || order[1] != "inner" || order[2] != "handler" {
		t.Errorf("order = %v", order)
	}
}
