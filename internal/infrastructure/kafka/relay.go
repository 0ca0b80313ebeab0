package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	domorder "github.com/tiendago/storefront/internal/domain/order"
	domoutbox "github.com/tiendago/storefront/internal/domain/outbox"
	"github.com/tiendago/storefront/internal/observability"
)

// Envelope is the wire format for relayed order events. Partition key is the
// order id so all events for one order keep their relative order.
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Payload      json.RawMessage `json:"payload"`
}

// Relay bridges the in-process event bus to a Kafka topic. It subscribes to
// the order lifecycle events and forwards them as enveloped JSON; local
// delivery never blocks on the broker because the writer runs async.
type Relay struct {
	writer   *kafkago.Writer
	producer string
	log      observability.Logger
}

func NewRelay(brokers []string, topic, producer string, logger observability.Logger) *Relay {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Relay{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafkago.Hash{},
			RequiredAcks: kafkago.RequireAll,
			Async:        true,
			Completion: func(messages []kafkago.Message, err error) {
				if err != nil {
					logger.Warn("kafka_write_failed",
						observability.F("messages", len(messages)),
						observability.F("error", err.Error()),
					)
				}
			},
		},
		producer: producer,
		log:      logger.With(observability.F("component", "kafka_relay")),
	}
}

// Start registers the relay on the bus for every order lifecycle event.
func (r *Relay) Start(subscriber domoutbox.Subscriber) {
	for _, name := range []string{
		domorder.OrderCreatedEvent{}.EventName(),
		domorder.OrderApprovedEvent{}.EventName(),
		domorder.OrderDeclinedEvent{}.EventName(),
		domorder.OrderErroredEvent{}.EventName(),
	} {
		subscriber.Subscribe(name, r.handle)
	}
}

func (r *Relay) handle(ctx context.Context, e domoutbox.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	env := Envelope{
		EventID:      uuid.NewString(),
		EventType:    e.EventName(),
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     r.producer,
		Payload:      payload,
	}
	value, err := json.Marshal(env)
	if err != nil {
		return err
	}

	return r.writer.WriteMessages(ctx, kafkago.Message{
		Key:   partitionKey(e),
		Value: value,
		Time:  time.Now(),
	})
}

func (r *Relay) Close() error { return r.writer.Close() }

func partitionKey(e domoutbox.Event) []byte {
	switch evt := e.(type) {
	case domorder.OrderCreatedEvent:
		return []byte(evt.OrderID)
	case domorder.OrderApprovedEvent:
		return []byte(evt.OrderID)
	case domorder.OrderDeclinedEvent:
		return []byte(evt.OrderID)
	case domorder.OrderErroredEvent:
		return []byte(evt.OrderID)
	default:
		return nil
	}
}
