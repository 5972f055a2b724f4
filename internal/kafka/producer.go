package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"munjiz/internal/logging"
	"munjiz/internal/models"
)

const writeTimeout = 5 * time.Second

type Config struct {
	Broker string
	Topic  string
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Producer publishes appended notifications as JSON, keyed by id.
type Producer struct {
	writer messageWriter
	topic  string
	logger *logrus.Entry
}

func NewProducer(cfg Config, logger *logging.Logger) (*Producer, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("kafka broker not configured")
	}
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.Broker),
		Topic:                  cfg.Topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		WriteTimeout:           writeTimeout,
		AllowAutoTopicCreation: true,
	}
	return &Producer{writer: w, topic: cfg.Topic, logger: logger.Component("kafka")}, nil
}

type event struct {
	Event        string              `json:"event"`
	Notification models.Notification `json:"notification"`
	PublishedAt  time.Time           `json:"published_at"`
}

// Publish is shaped as a dispatcher handler: failures are logged only.
func (p *Producer) Publish(ctx context.Context, n models.Notification) {
	payload, err := json.Marshal(event{Event: "notification.created", Notification: n, PublishedAt: time.Now().UTC()})
	if err != nil {
		p.logger.Errorf("Failed to encode notification %s: %v", n.ID, err)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, kafkago.Message{Key: []byte(n.ID), Value: payload}); err != nil {
		p.logger.Errorf("Failed to publish notification %s to %s: %v", n.ID, p.topic, err)
		return
	}
	p.logger.Debugf("Published notification %s to %s", n.ID, p.topic)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
