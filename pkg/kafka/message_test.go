package kafka

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestRetryCountPastNine(t *testing.T) {
	msg := NewMessage().WithKey("k").WithValue("v").Build()
	for range 12 {
		msg.IncrementRetryCount()
	}
	if got := msg.GetRetryCount(); got != 12 {
		t.Errorf("GetRetryCount = %d, want 12", got)
	}
	if msg.Headers[HeaderRetryCount] != "12" {
		t.Errorf("header = %q", msg.Headers[HeaderRetryCount])
	}
}

func TestRetryCountIgnoresGarbage(t *testing.T) {
	msg := Message{Headers: map[string]string{HeaderRetryCount: "abc"}}
	if msg.GetRetryCount() != 0 {
		t.Error("garbage header should read as zero")
	}
	var empty Message
	empty.IncrementRetryCount()
	if empty.GetRetryCount() != 1 {
		t.Error("increment should initialise headers")
	}
}

func TestBuildFillsEventHeaders(t *testing.T) {
	msg := NewMessage().WithKey("Gold").WithValue(map[string]string{"a": "b"}).WithEventType("capacity.changed").Build()
	if msg.GetEventID() == "" {
		t.Error("event id should be generated")
	}
	if msg.Headers[HeaderTimestamp] == "" {
		t.Error("timestamp header should be set")
	}
	if msg.GetEventType() != "capacity.changed" {
		t.Errorf("event type = %q", msg.GetEventType())
	}
}

func TestBuildCheckedReportsEncodingFailure(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(math.Inf(1)).BuildChecked()
	if err == nil {
		t.Fatal("expected encoding error")
	}
	if ClassifyError(err) != ErrorTypePermanent {
		t.Error("encoding failures are permanent")
	}
}

func TestDecodeValueFailureIsPermanent(t *testing.T) {
	msg := Message{Value: []byte("{not json")}
	var out map[string]any
	err := msg.DecodeValue(&out)
	if err == nil {
		t.Fatal("expected decode error")
	}
	if ShouldRetry(err, 0, 3) {
		t.Error("decode errors must not be retried")
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"transient wrapper", NewTransientError("store", errors.New("x")), ErrorTypeTransient},
		{"permanent wrapper", NewPermanentError("decode", nil), ErrorTypePermanent},
		{"connection refused", errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{"deadline", context.DeadlineExceeded, ErrorTypeTransient},
		{"schema", errors.New("schema mismatch on field"), ErrorTypePermanent},
		{"unknown defaults permanent", errors.New("weird"), ErrorTypePermanent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldRetryRespectsLimit(t *testing.T) {
	err := NewTransientError("mongo", errors.New("i/o timeout"))
	if !ShouldRetry(err, 2, 3) {
		t.Error("should retry below limit")
	}
	if ShouldRetry(err, 3, 3) {
		t.Error("should stop at limit")
	}
}
