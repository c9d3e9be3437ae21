package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alexisbeaulieu97/tokenflow/internal/logger"
	"github.com/alexisbeaulieu97/tokenflow/internal/ports"
)

// DefaultKeepAlive is the interval between SSE keep-alive comments.
const DefaultKeepAlive = 30 * time.Second

type client struct {
	id     string
	events chan []byte
}

// Hub is a server-sent-events transport. Each connected client receives every
// delivered envelope as an SSE message with the envelope id as the event id.
type Hub struct {
	log       *logger.Logger
	keepAlive time.Duration

	mu         sync.RWMutex
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}
}

// NewHub creates a hub. Run must be started before clients connect.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:        log.WithField("component", "relay_hub"),
		keepAlive:  DefaultKeepAlive,
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// WithKeepAlive sets the keep-alive interval.
func (h *Hub) WithKeepAlive(d time.Duration) *Hub {
	if d > 0 {
		h.keepAlive = d
	}
	return h
}

// Run owns the client set until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			total := len(h.clients)
			h.mu.Unlock()
			h.log.WithFields(map[string]any{"client": c.id, "total": total}).Info("relay client connected")

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.events)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.log.WithFields(map[string]any{"client": c.id, "total": total}).Info("relay client disconnected")

		case msg := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.events <- msg:
				default:
					h.log.WithField("client", c.id).Warn("relay client is slow, skipping message")
				}
			}
			h.mu.RUnlock()

		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.events)
			}
			h.mu.Unlock()
			return
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Deliver implements ports.RelayTransport.
func (h *Hub) Deliver(ctx context.Context, envelope ports.Envelope) error {
	if h.ClientCount() == 0 {
		return ErrNoSubscribers
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	msg := []byte(fmt.Sprintf("id: %s\nevent: batch\ndata: %s\n\n", envelope.ID, data))

	select {
	case h.broadcast <- msg:
		return nil
	case <-h.done:
		return ErrNoSubscribers
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ServeHTTP streams envelopes to one client until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	c := &client{id: uuid.NewString(), events: make(chan []byte, 64)}
	select {
	case h.register <- c:
	case <-h.done:
		http.Error(w, "relay stopped", http.StatusServiceUnavailable)
		return
	}
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
	}()

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.events:
			if !ok {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
