package ports

import (
	"context"
	"time"
)

// StyleSurface is the flat key -> value map that rendering contexts consume.
// Implementations must be safe for concurrent readers; the preview engine is
// the only writer.
type StyleSurface interface {
	SetProperty(key, value string)
	Property(key string) (string, bool)
	Snapshot() map[string]string
	Restore(snapshot map[string]string)
}

// StyleChange is one style-key assignment shipped to another rendering context.
type StyleChange struct {
	Token    string `json:"token"`
	StyleKey string `json:"styleKey"`
	Value    string `json:"value"`
	Domain   string `json:"domain"`
}

// Envelope wraps a batch of style changes for delivery across contexts.
type Envelope struct {
	ID      string        `json:"id"`
	SentAt  time.Time     `json:"sentAt"`
	Changes []StyleChange `json:"changes"`
}

// RelayTransport delivers envelopes to remote rendering contexts. Deliver
// returns once the envelope has been handed off; acknowledgements arrive
// separately through the relay that owns the transport.
type RelayTransport interface {
	Deliver(ctx context.Context, envelope Envelope) error
}
