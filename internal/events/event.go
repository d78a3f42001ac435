// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"pricing_gateway/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Publisher   = events.Publisher
	Subscriber  = events.Subscriber
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	Envelope    = events.Envelope
)

// Re-export platform functions
var NewEnvelope = events.NewEnvelope

// =============================================================================
// Pricing Domain Events
// =============================================================================

// PriceUpdated is published after a price record was changed in place.
type PriceUpdated struct {
	Envelope
	ProductID    int64  `json:"productId"`
	Value        string `json:"value"`
	CurrencyCode string `json:"currencyCode"`
	RequestID    string `json:"requestId,omitempty"`
}

func (e PriceUpdated) EventName() string { return "pricing.price.updated" }
