// Package notification forwards domain events to external subscribers.
// It subscribes to the in-process bus so the pricing write path never
// depends on a message broker.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pricing_gateway/internal/events"
	"pricing_gateway/platform/logger"
)

const publishTimeout = 5 * time.Second

// Publisher delivers an encoded event to the outside world. messageID lets
// consumers drop redeliveries.
type Publisher interface {
	Publish(ctx context.Context, routingKey, messageID string, body []byte) error
}

// Module relays price change events to a Publisher.
type Module struct {
	publisher Publisher
	log       *logger.Logger
}

// New creates the notification module.
func New(publisher Publisher, log *logger.Logger) *Module {
	return &Module{publisher: publisher, log: log}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}

// RegisterHandlers subscribes the module to the events it forwards.
func (m *Module) RegisterHandlers(bus events.Subscriber) {
	bus.Subscribe(events.PriceUpdated{}.EventName(), m)
}

// Handle implements events.Handler. Failures are returned to the bus, which
// logs them; they never reach the request that triggered the event.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.PriceUpdated:
		return m.handlePriceUpdated(ctx, e)
	default:
		return nil
	}
}

func (m *Module) handlePriceUpdated(ctx context.Context, e events.PriceUpdated) error {
	body, err := json.Marshal(priceChangedMessage{
		Event:        e.EventName(),
		EventID:      e.EventID(),
		ProductID:    e.ProductID,
		Value:        e.Value,
		CurrencyCode: e.CurrencyCode,
		RequestID:    e.RequestID,
		OccurredAt:   e.OccurredAt(),
	})
	if err != nil {
		return fmt.Errorf("encode price change: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := m.publisher.Publish(ctx, e.EventName(), e.EventID(), body); err != nil {
		return fmt.Errorf("publish price change for product %d: %w", e.ProductID, err)
	}
	m.log.WithContext(ctx).Debug("price change published", "productId", e.ProductID)
	return nil
}

type priceChangedMessage struct {
	Event        string    `json:"event"`
	EventID      string    `json:"event_id"`
	ProductID    int64     `json:"product_id"`
	Value        string    `json:"value"`
	CurrencyCode string    `json:"currency_code"`
	RequestID    string    `json:"request_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}
