// Package events dispatches domain events between modules inside the
// process. Publishers never wait for, or learn about, handler outcomes.
// This is part of the platform layer and contains no business logic.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is a fact that has already happened. EventName doubles as the
// subscription key and as the routing key for external delivery.
type Event interface {
	EventName() string
	EventID() string
	OccurredAt() time.Time
}

// Envelope carries the identity and timestamp shared by every event; embed
// it in concrete event types.
type Envelope struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEnvelope stamps a random id and the current UTC time.
func NewEnvelope() Envelope {
	return Envelope{ID: uuid.NewString(), Timestamp: time.Now().UTC()}
}

// EventID returns the unique id of this occurrence.
func (e Envelope) EventID() string { return e.ID }

// OccurredAt returns when the event was stamped.
func (e Envelope) OccurredAt() time.Time { return e.Timestamp }

// Handler reacts to one event.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Publisher is the fire-and-forget side used by write paths. Handlers run
// detached from ctx cancellation.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Subscriber registers handlers by event name.
type Subscriber interface {
	Subscribe(eventName string, handler Handler)
}

// Bus is both sides of the dispatcher.
type Bus interface {
	Publisher
	Subscriber
}
