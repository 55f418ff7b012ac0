// Package events publishes order lifecycle events for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	OrderPlaced        = "order.placed"
	OrderPaid          = "order.paid"
	OrderPaymentFailed = "order.payment_failed"
	OrderExpired       = "order.expired"
)

type Event struct {
	EventID        string    `json:"event_id"`
	Type           string    `json:"event_type"`
	OccurredAt     time.Time `json:"occurred_at"`
	OrderID        string    `json:"order_id"`
	Provider       string    `json:"provider,omitempty"`
	CorrelationKey string    `json:"correlation_key,omitempty"`
	ProviderStatus string    `json:"provider_status,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop discards every event. Used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                        { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by order id, so every event of one order
// lands on the same partition.
type KafkaPublisher struct {
	w messageWriter
}

func NewKafkaPublisher(w *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{w: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	value, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:     []byte(e.OrderID),
		Value:   value,
		Time:    e.OccurredAt,
		Headers: []kafka.Header{{Key: "x-event-type", Value: []byte(e.Type)}},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
