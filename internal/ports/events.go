package ports

import "context"

const (
	// EventTokenUpdated is emitted after a token change has been cascaded through the registry.
	EventTokenUpdated = "token.updated"
	// EventBatchApplied is emitted after a batch has been written to the style surface.
	EventBatchApplied = "batch.applied"
	// EventPreviewEntered is emitted when the surface snapshot is taken.
	EventPreviewEntered = "preview.entered"
	// EventPreviewExited is emitted after the surface has been restored.
	EventPreviewExited = "preview.exited"
	// EventA11yViolation is emitted for each failing contrast pair.
	EventA11yViolation = "a11y.violation"
	// EventPaletteLoaded is emitted when a palette replaces the registry contents.
	EventPaletteLoaded = "palette.loaded"
)

// DomainEvent represents a significant occurrence in the token engine. Events
// carry structured payloads that subscribers use for logging, dashboards or relays.
type DomainEvent interface {
	EventType() string
	Payload() interface{}
}

// EventPublisher distributes events to interested subscribers. Dispatch is
// synchronous: Publish blocks until all handlers run. Implementations must be
// thread-safe.
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
}

// EventHandler processes an event of a specific type. Failures are returned so
// publishers can log them and keep delivering to remaining subscribers.
type EventHandler func(context.Context, DomainEvent) error

// Subscription represents a registered handler.
type Subscription interface {
	Unsubscribe()
}

// Event is the default DomainEvent implementation.
type Event struct {
	Type   string
	Fields map[string]interface{}
}

// NewEvent builds an Event with a map payload.
func NewEvent(eventType string, fields map[string]interface{}) Event {
	return Event{Type: eventType, Fields: fields}
}

func (e Event) EventType() string { return e.Type }

func (e Event) Payload() interface{} { return e.Fields }
