package events

import (
	"context"
	"sync"

	"github.com/alexisbeaulieu97/tokenflow/internal/logger"
	"github.com/alexisbeaulieu97/tokenflow/internal/ports"
)

// LoggingPublisher writes every event as a structured log entry and fans it
// out to subscribers.
type LoggingPublisher struct {
	log    *logger.Logger
	subs   map[string][]subscriptionEntry
	nextID int
	mu     sync.RWMutex
}

// NewLoggingPublisher creates an event publisher backed by log. A nil logger
// still delivers to subscribers.
func NewLoggingPublisher(log *logger.Logger) *LoggingPublisher {
	return &LoggingPublisher{
		log:  log,
		subs: make(map[string][]subscriptionEntry),
	}
}

// Publish logs the event and invokes its subscribers in registration order.
func (p *LoggingPublisher) Publish(ctx context.Context, event ports.DomainEvent) error {
	if p == nil || event == nil {
		return nil
	}

	p.mu.RLock()
	handlers := append([]subscriptionEntry(nil), p.subs[event.EventType()]...)
	handlers = append(handlers, p.subs[WildcardEvent]...)
	p.mu.RUnlock()

	fields := map[string]any{"event_type": event.EventType()}
	if id := ports.GetCorrelationID(ctx); id != "" {
		fields["correlation_id"] = id
	}
	switch payload := event.Payload().(type) {
	case map[string]interface{}:
		for key, value := range payload {
			fields[key] = value
		}
	case nil:
	default:
		fields["payload"] = payload
	}
	p.log.WithFields(fields).Info("domain event")

	for _, entry := range handlers {
		if entry.handler == nil {
			continue
		}
		if err := entry.handler(ctx, event); err != nil {
			p.log.WithField("event_type", event.EventType()).Error(err, "event handler failed")
		}
	}

	return nil
}

// WildcardEvent subscribes a handler to every event type.
const WildcardEvent = "*"

// Subscribe registers a handler for the provided event type.
func (p *LoggingPublisher) Subscribe(eventType string, handler ports.EventHandler) (ports.Subscription, error) {
	if p == nil || handler == nil {
		return noopSubscription{}, nil
	}
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.subs[eventType] = append(p.subs[eventType], subscriptionEntry{id: id, handler: handler})
	p.mu.Unlock()

	return subscription{
		cancel: func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			handlers := p.subs[eventType]
			for i, entry := range handlers {
				if entry.id == id {
					p.subs[eventType] = append(handlers[:i:i], handlers[i+1:]...)
					break
				}
			}
		},
	}, nil
}

type noopSubscription struct{}

func (noopSubscription) Unsubscribe() {}

type subscription struct {
	cancel func()
}

func (s subscription) Unsubscribe() {
	if s.cancel != nil {
		s.cancel()
	}
}

type subscriptionEntry struct {
	id      int
	handler ports.EventHandler
}
