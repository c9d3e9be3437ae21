// Package relay ships applied batches to other rendering contexts and waits
// for their acknowledgement.
package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alexisbeaulieu97/tokenflow/internal/logger"
	"github.com/alexisbeaulieu97/tokenflow/internal/ports"
	"github.com/alexisbeaulieu97/tokenflow/internal/token"
)

// DefaultAckTimeout bounds how long Send waits for an acknowledgement.
const DefaultAckTimeout = 5 * time.Second

var (
	// ErrRelayTimeout is returned when no acknowledgement arrives in time.
	ErrRelayTimeout = errors.New("relay acknowledgement timed out")
	// ErrNoSubscribers is returned by transports with nobody listening.
	ErrNoSubscribers = errors.New("relay has no subscribers")
)

// Relay correlates outgoing envelopes with incoming acknowledgements.
type Relay struct {
	transport ports.RelayTransport
	timeout   time.Duration
	log       *logger.Logger
	metrics   ports.MetricsCollector
	now       func() time.Time

	mu      sync.Mutex
	pending map[string]chan struct{}
}

// Option configures a Relay.
type Option func(*Relay)

func WithTimeout(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(r *Relay) {
		r.log = log
	}
}

func WithMetrics(metrics ports.MetricsCollector) Option {
	return func(r *Relay) {
		if metrics != nil {
			r.metrics = metrics
		}
	}
}

// New builds a relay over transport.
func New(transport ports.RelayTransport, opts ...Option) *Relay {
	r := &Relay{
		transport: transport,
		timeout:   DefaultAckTimeout,
		metrics:   ports.NoopMetrics{},
		now:       time.Now,
		pending:   make(map[string]chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithField("component", "relay")
	return r
}

// Envelope converts token changes into a relay envelope with a fresh id.
func Envelope(changes []token.Change, sentAt time.Time) ports.Envelope {
	out := make([]ports.StyleChange, len(changes))
	for i, c := range changes {
		out[i] = ports.StyleChange{Token: c.Name, StyleKey: c.StyleKey, Value: c.Value, Domain: c.Domain}
	}
	return ports.Envelope{ID: uuid.NewString(), SentAt: sentAt, Changes: out}
}

// Send delivers changes and blocks until they are acknowledged, the timeout
// elapses or ctx is done. It returns the envelope id.
func (r *Relay) Send(ctx context.Context, changes []token.Change) (string, error) {
	env := Envelope(changes, r.now())
	ack := make(chan struct{})

	r.mu.Lock()
	r.pending[env.ID] = ack
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		delete(r.pending, env.ID)
		r.mu.Unlock()
	}()

	log := r.log.WithFields(map[string]any{"envelope_id": env.ID, "changes": len(env.Changes)})
	if id := ports.GetCorrelationID(ctx); id != "" {
		log = log.WithField("correlation_id", id)
	}

	if err := r.transport.Deliver(ctx, env); err != nil {
		if errors.Is(err, ErrNoSubscribers) {
			log.Debug("relay skipped, no subscribers")
			return env.ID, err
		}
		r.record(ctx, "error")
		return env.ID, fmt.Errorf("deliver envelope %s: %w", env.ID, err)
	}

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case <-ack:
		r.record(ctx, "acked")
		log.Debug("relay acknowledged")
		return env.ID, nil
	case <-timer.C:
		r.record(ctx, "timeout")
		log.Warn("relay acknowledgement timed out")
		return env.ID, ErrRelayTimeout
	case <-ctx.Done():
		return env.ID, ctx.Err()
	}
}

// Ack marks an envelope as received. It reports false for unknown or
// already-acknowledged ids.
func (r *Relay) Ack(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	ack, ok := r.pending[id]
	if !ok {
		return false
	}
	delete(r.pending, id)
	close(ack)
	return true
}

// Pending is the number of envelopes awaiting acknowledgement.
func (r *Relay) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

func (r *Relay) record(ctx context.Context, status string) {
	r.metrics.IncCounter(ctx, ports.MetricRelayDeliveries, map[string]string{"status": status})
}
