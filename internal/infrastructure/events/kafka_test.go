package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/99minutos/admin-api/internal/core/domain"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}

	event := domain.UserEvent{
		Type:       domain.UserCreated,
		UserID:     42,
		Email:      "ada@example.com",
		ActorID:    1,
		OccurredAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if err := p.Publish(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "42" {
		t.Fatalf("expected key 42, got %s", msg.Key)
	}
	if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != "user.created" {
		t.Fatalf("unexpected headers %+v", msg.Headers)
	}

	var decoded domain.UserEvent
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.UserID != 42 || decoded.Email != "ada@example.com" || !decoded.OccurredAt.Equal(event.OccurredAt) {
		t.Fatalf("unexpected payload %+v", decoded)
	}
}

func TestKafkaPublisher_WrapsWriteErrors(t *testing.T) {
	boom := errors.New("leader not available")
	p := &KafkaPublisher{writer: &fakeWriter{err: boom}}

	if err := p.Publish(context.Background(), domain.UserEvent{Type: domain.UserDeleted}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestKafkaPublisher_Close(t *testing.T) {
	w := &fakeWriter{}
	if err := (&KafkaPublisher{writer: w}).Close(); err != nil || !w.closed {
		t.Fatalf("expected writer to be closed")
	}
}
