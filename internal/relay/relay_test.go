package relay

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/tokenflow/internal/logger"
	"github.com/alexisbeaulieu97/tokenflow/internal/ports"
	"github.com/alexisbeaulieu97/tokenflow/internal/token"
)

type ackingTransport struct {
	mu        sync.Mutex
	relay     *Relay
	delivered []ports.Envelope
	ack       bool
	err       error
}

func (t *ackingTransport) Deliver(_ context.Context, env ports.Envelope) error {
	t.mu.Lock()
	t.delivered = append(t.delivered, env)
	r, ack, err := t.relay, t.ack, t.err
	t.mu.Unlock()
	if err != nil {
		return err
	}
	if ack {
		go r.Ack(env.ID)
	}
	return nil
}

type countingMetrics struct {
	ports.NoopMetrics
	mu       sync.Mutex
	statuses []string
}

func (m *countingMetrics) IncCounter(_ context.Context, name string, labels map[string]string) {
	if name != ports.MetricRelayDeliveries {
		return
	}
	m.mu.Lock()
	m.statuses = append(m.statuses, labels["status"])
	m.mu.Unlock()
}

var sampleChanges = []token.Change{
	{Name: "color-primary", Value: "#3366CC", StyleKey: "tf-color-primary", Domain: "color"},
}

func TestSendWaitsForAck(t *testing.T) {
	transport := &ackingTransport{ack: true}
	metrics := &countingMetrics{}
	r := New(transport, WithLogger(logger.Discard()), WithMetrics(metrics))
	transport.relay = r

	id, err := r.Send(context.Background(), sampleChanges)
	require.NoError(t, err)
	require.Len(t, transport.delivered, 1)

	env := transport.delivered[0]
	assert.Equal(t, id, env.ID)
	assert.Equal(t, []ports.StyleChange{{Token: "color-primary", StyleKey: "tf-color-primary", Value: "#3366CC", Domain: "color"}}, env.Changes)
	assert.Zero(t, r.Pending())
	assert.Equal(t, []string{"acked"}, metrics.statuses)
}

func TestSendTimesOutWithoutAck(t *testing.T) {
	transport := &ackingTransport{}
	metrics := &countingMetrics{}
	r := New(transport, WithLogger(logger.Discard()), WithMetrics(metrics), WithTimeout(20*time.Millisecond))
	transport.relay = r

	id, err := r.Send(context.Background(), sampleChanges)
	require.ErrorIs(t, err, ErrRelayTimeout)
	assert.NotEmpty(t, id)
	assert.False(t, r.Ack(id), "late ack for an expired envelope is ignored")
	assert.Equal(t, []string{"timeout"}, metrics.statuses)
}

func TestSendReportsTransportErrors(t *testing.T) {
	boom := errors.New("boom")
	r := New(&ackingTransport{err: boom}, WithLogger(logger.Discard()))

	_, err := r.Send(context.Background(), sampleChanges)
	require.ErrorIs(t, err, boom)

	r = New(&ackingTransport{err: ErrNoSubscribers}, WithLogger(logger.Discard()))
	_, err = r.Send(context.Background(), sampleChanges)
	require.ErrorIs(t, err, ErrNoSubscribers)
	assert.Zero(t, r.Pending())
}

func TestSendHonoursContext(t *testing.T) {
	transport := &ackingTransport{}
	r := New(transport, WithLogger(logger.Discard()))
	transport.relay = r

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := r.Send(ctx, sampleChanges)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAckUnknownID(t *testing.T) {
	r := New(&ackingTransport{}, WithLogger(logger.Discard()))
	assert.False(t, r.Ack("missing"))
}
