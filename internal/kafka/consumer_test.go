package kafka

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func quietConsumer() *Consumer {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &Consumer{log: log}
}

func TestConsumer_handle_DecodesEvent(t *testing.T) {
	c := quietConsumer()

	payload, err := json.Marshal(FlowEvent{Type: EventBookingCreated, SessionID: "sess-1", BookingID: "b-1"})
	assert.NoError(t, err)

	var got FlowEvent
	err = c.handle(context.Background(), kafkaGo.Message{Value: payload}, func(ctx context.Context, event FlowEvent) error {
		got = event
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, EventBookingCreated, got.Type)
	assert.Equal(t, "b-1", got.BookingID)
}

func TestConsumer_handle_SkipsUndecodableMessage(t *testing.T) {
	c := quietConsumer()

	called := false
	err := c.handle(context.Background(), kafkaGo.Message{Value: []byte("{not json")}, func(ctx context.Context, event FlowEvent) error {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.False(t, called)
}

func TestConsumer_handle_PropagatesHandlerError(t *testing.T) {
	c := quietConsumer()

	payload, _ := json.Marshal(FlowEvent{Type: EventDraftReset, SessionID: "sess-1"})
	err := c.handle(context.Background(), kafkaGo.Message{Value: payload}, func(ctx context.Context, event FlowEvent) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
}
