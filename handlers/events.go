package handlers

import (
	"fmt"
	"net/http"
	"rally-metrics-go/logging"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Event names sent on the /events stream
const (
	EventConnected    = "connected"
	EventStatsUpdated = "statsUpdated"
	EventKeepalive    = "keepalive"
)

// sseClient is one connected browser
type sseClient struct {
	messages chan string
}

// EventHub fans server-sent events out to every connected client
type EventHub struct {
	mu        sync.RWMutex
	clients   map[*sseClient]struct{}
	counter   uint64
	keepalive time.Duration
	logger    *logging.Logger
}

// NewEventHub creates a hub. keepalive is the interval between keepalive
// events on each stream.
func NewEventHub(keepalive time.Duration) *EventHub {
	if keepalive <= 0 {
		keepalive = 30 * time.Second
	}
	return &EventHub{
		clients:   make(map[*sseClient]struct{}),
		keepalive: keepalive,
		logger:    logging.WithPrefix("SSE"),
	}
}

// ClientCount returns the number of connected clients
func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *EventHub) format(event, data string) string {
	id := atomic.AddUint64(&h.counter, 1)
	var b strings.Builder
	fmt.Fprintf(&b, "id: %d\nevent: %s\n", id, event)
	for _, line := range strings.Split(data, "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")
	return b.String()
}

// Broadcast queues an event for every client. Clients whose buffer is full
// miss the event.
func (h *EventHub) Broadcast(event, data string) {
	message := h.format(event, data)

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for client := range h.clients {
		select {
		case client.messages <- message:
			sent++
		default:
			h.logger.Warn("Client channel full, skipping message")
		}
	}
	h.logger.Debugf("Broadcast %s to %d/%d clients", event, sent, len(h.clients))
}

// BroadcastStatsUpdated tells clients the player stats changed
func (h *EventHub) BroadcastStatsUpdated() {
	h.Broadcast(EventStatsUpdated, time.Now().UTC().Format(time.RFC3339))
}

// ServeHTTP handles GET /events
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := &sseClient{messages: make(chan string, 16)}
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	h.logger.Infof("Client connected from %s", r.RemoteAddr)

	defer func() {
		h.mu.Lock()
		delete(h.clients, client)
		h.mu.Unlock()
		h.logger.Infof("Client disconnected from %s", r.RemoteAddr)
	}()

	fmt.Fprint(w, h.format(EventConnected, "ok"))
	flusher.Flush()

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case message := <-client.messages:
			fmt.Fprint(w, message)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, h.format(EventKeepalive, "ping"))
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
