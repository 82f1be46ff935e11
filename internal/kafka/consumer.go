package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// EventHandler processes one decoded flow event. A returned error stops the
// consume loop.
type EventHandler func(ctx context.Context, event FlowEvent) error

// Consumer reads flow events from a topic and hands them to a handler
// already decoded. Messages that do not decode are logged and skipped, never
// redelivered.
type Consumer struct {
	reader *kafka.Reader
	log    *logrus.Logger
}

func NewConsumer(brokers []string, groupID, topic string, log *logrus.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		log: log,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		if err := c.handle(ctx, msg, handler); err != nil {
			return err
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message, handler EventHandler) error {
	var event FlowEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.log.WithFields(logrus.Fields{"topic": msg.Topic, "error": err}).Warn("skipping undecodable flow event")
		return nil
	}
	return handler(ctx, event)
}
