package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"munjiz/internal/logging"
	"munjiz/internal/models"
)

type fakeWriter struct {
	msgs     []kafkago.Message
	err      error
	deadline bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	_, w.deadline = ctx.Deadline()
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error { return nil }

func TestPublishKeysByNotificationID(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, topic: "task_notifications", logger: logging.NewDiscard().Component("kafka")}
	n := models.Notification{ID: "rem-today-1", Title: "Due", Type: models.NotificationAlert, Timestamp: time.Now()}

	p.Publish(context.Background(), n)
	if len(w.msgs) != 1 || string(w.msgs[0].Key) != "rem-today-1" {
		t.Fatalf("unexpected messages %+v", w.msgs)
	}
	if !w.deadline {
		t.Fatal("publish should bound the write with a timeout")
	}
	var got event
	if err := json.Unmarshal(w.msgs[0].Value, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Event != "notification.created" || got.Notification.ID != n.ID {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestPublishFailureIsSwallowed(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := &Producer{writer: w, topic: "t", logger: logging.NewDiscard().Component("kafka")}
	p.Publish(context.Background(), models.Notification{ID: "x", Type: models.NotificationInfo})
	if len(w.msgs) != 1 {
		t.Fatal("expected one write attempt")
	}
}

func TestNewProducerRequiresBroker(t *testing.T) {
	if _, err := NewProducer(Config{Topic: "t"}, logging.NewDiscard()); err == nil {
		t.Fatal("expected error without broker")
	}
}
