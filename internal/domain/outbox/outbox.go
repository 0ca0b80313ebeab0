// Package outbox holds the event distribution ports. The domain publishes
// lifecycle events through Publisher without knowing whether they fan out
// in-process, to Kafka, or nowhere at all.
package outbox

import "context"

// Event is a domain occurrence with a stable dotted name ("order.approved").
type Event interface {
	EventName() string
}

// Handler consumes one event. Returning an error marks the delivery failed;
// whether it is retried is up to the bus implementation.
type Handler func(ctx context.Context, e Event) error

// Publisher accepts events for distribution. Callers treat publishing as best
// effort; durable delivery is the implementation's concern.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Subscriber registers handlers by event name.
type Subscriber interface {
	Subscribe(eventName string, h Handler)
}
