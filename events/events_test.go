package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureWriter struct {
	msgs   []kafka.Message
	closed bool
}

func (c *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	c.msgs = append(c.msgs, msgs...)
	return nil
}

func (c *captureWriter) Close() error {
	c.closed = true
	return nil
}

func TestKafkaPublisherKeysByOrder(t *testing.T) {
	w := &captureWriter{}
	p := &KafkaPublisher{w: w}

	require.NoError(t, p.Publish(context.Background(), Event{
		Type:           OrderPaid,
		OrderID:        "order-1",
		Provider:       "stripe_checkout",
		CorrelationKey: "cs_1",
	}))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "order-1", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, OrderPaid, string(msg.Headers[0].Value))

	var got Event
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.NotEmpty(t, got.EventID)
	assert.False(t, got.OccurredAt.IsZero())
	assert.Equal(t, "cs_1", got.CorrelationKey)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.Publish(context.Background(), Event{Type: OrderExpired}))
	assert.NoError(t, p.Close())
}
