// Package events defines the application's domain events and re-exports the
// platform event bus types so domain modules depend on a single import path.
package events

import (
	"legalintake_backend/platform/events"
	"legalintake_backend/platform/logger"
)

// Re-export platform types so modules only import internal/events.
type (
	Event       = events.Event
	BaseEvent   = events.BaseEvent
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	Bus         = events.Bus
)

// NewBaseEvent creates a new base event with the current timestamp.
func NewBaseEvent() BaseEvent {
	return events.NewBaseEvent()
}

// NewInMemoryBus creates the default in-process event bus.
func NewInMemoryBus(log *logger.Logger) Bus {
	return events.NewInMemoryBus(log)
}
