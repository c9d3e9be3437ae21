package relay

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/tokenflow/internal/logger"
	"github.com/alexisbeaulieu97/tokenflow/internal/ports"
)

func TestHubDeliverWithoutClients(t *testing.T) {
	hub := NewHub(logger.Discard())
	err := hub.Deliver(context.Background(), ports.Envelope{ID: "x"})
	require.ErrorIs(t, err, ErrNoSubscribers)
}

func TestHubStreamsEnvelopes(t *testing.T) {
	hub := NewHub(logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(hub)
	defer srv.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": connected\n", line)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	env := ports.Envelope{ID: "env-1", Changes: []ports.StyleChange{{Token: "spacing-md", StyleKey: "tf-spacing-md", Value: "16px", Domain: "spacing"}}}
	require.NoError(t, hub.Deliver(ctx, env))

	var id, data string
	for data == "" {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(line, "id: "):
			id = strings.TrimPrefix(line, "id: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
	assert.Equal(t, "env-1", id)

	var got ports.Envelope
	require.NoError(t, json.Unmarshal([]byte(data), &got))
	assert.Equal(t, env.Changes, got.Changes)
}
