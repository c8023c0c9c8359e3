package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/aluiziotomazelli/wifi-manager/internal/manager"
)

// Event is the wire shape of one SSE message.
type Event struct {
	ID   int64                  `json:"id,omitempty"`
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// Client is one subscribed SSE connection.
type Client struct {
	id      string
	writer  http.ResponseWriter
	ctx     context.Context
	cancel  context.CancelFunc
	events  chan Event
	once    sync.Once
	writeMu sync.Mutex
}

// Hub fans out manager.TransitionEvent values to connected clients and
// satisfies manager.TelemetryPublisher. There is exactly one WiFi manager
// per process, so unlike a multi-device hub it keeps a single replay
// buffer rather than one per device.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	buffer  *ringBuffer
	nextID  int64

	heartbeatPeriod time.Duration
	ticker          *time.Ticker
	done            chan struct{}
	wg              sync.WaitGroup
}

// NewHub builds a hub with the given replay buffer size, replay retention
// window and heartbeat period. Buffered events older than retention are
// not replayed to resuming clients even when capacity would allow it.
func NewHub(bufferSize int, retention, heartbeatPeriod time.Duration) *Hub {
	return &Hub{
		clients:         make(map[string]*Client),
		buffer:          newRingBuffer(bufferSize, retention),
		heartbeatPeriod: heartbeatPeriod,
		done:            make(chan struct{}),
	}
}

// Publish implements manager.TelemetryPublisher.
func (h *Hub) Publish(evt manager.TransitionEvent) {
	h.publish(Event{
		Type: "transition",
		Data: map[string]interface{}{
			"ts":         evt.Time.UTC().Format(time.RFC3339Nano),
			"state":      evt.State.String(),
			"bits":       evt.Bits.String(),
			"reason":     evt.Reason.String(),
			"rssi":       evt.RSSI,
			"retry_n":    evt.RetryN,
			"next_retry": evt.NextRetry.UTC().Format(time.RFC3339Nano),
		},
	})
}

func (h *Hub) publish(event Event) {
	h.mu.Lock()
	h.nextID++
	event.ID = h.nextID
	h.buffer.add(event)
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		select {
		case <-c.ctx.Done():
		case c.events <- event:
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// Subscribe serves an SSE stream to w until the request's context is
// cancelled, resuming from the Last-Event-ID header if present.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx, cancel := context.WithCancel(r.Context())
	client := &Client{
		id:     fmt.Sprintf("client-%d", time.Now().UnixNano()),
		writer: w,
		ctx:    ctx,
		cancel: cancel,
		events: make(chan Event, 64),
	}

	h.mu.Lock()
	h.clients[client.id] = client
	if len(h.clients) == 1 && h.ticker == nil {
		h.startHeartbeat()
	}
	h.mu.Unlock()
	defer h.unregister(client.id)

	if lastIDStr := r.Header.Get("Last-Event-ID"); lastIDStr != "" {
		if lastID, err := strconv.ParseInt(lastIDStr, 10, 64); err == nil {
			for _, evt := range h.buffer.after(lastID) {
				if err := writeSSE(client, evt); err != nil {
					return err
				}
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-client.events:
			if !ok {
				return nil
			}
			if err := writeSSE(client, evt); err != nil {
				return err
			}
		}
	}
}

func writeSSE(c *Client, evt Event) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	data, err := json.Marshal(evt.Data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}
	if _, err := fmt.Fprintf(c.writer, "id: %d\nevent: %s\ndata: %s\n\n", evt.ID, evt.Type, data); err != nil {
		return err
	}
	if f, ok := c.writer.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

func (h *Hub) unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		c.cancel()
		c.once.Do(func() { close(c.events) })
		delete(h.clients, id)
	}
	if len(h.clients) == 0 && h.ticker != nil {
		h.ticker.Stop()
		h.ticker = nil
	}
}

// startHeartbeat must be called with h.mu held.
func (h *Hub) startHeartbeat() {
	h.ticker = time.NewTicker(h.heartbeatPeriod)
	ticker := h.ticker
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		for {
			select {
			case <-ticker.C:
				h.publish(Event{Type: "heartbeat", Data: map[string]interface{}{
					"ts": time.Now().UTC().Format(time.RFC3339),
				}})
			case <-h.done:
				return
			}
		}
	}()
}

// Stop cancels every subscriber and stops the heartbeat goroutine.
func (h *Hub) Stop() {
	close(h.done)

	h.mu.Lock()
	for _, c := range h.clients {
		c.cancel()
		c.once.Do(func() { close(c.events) })
	}
	h.clients = make(map[string]*Client)
	if h.ticker != nil {
		h.ticker.Stop()
		h.ticker = nil
	}
	h.mu.Unlock()

	h.wg.Wait()
}

// ringBuffer is a fixed-capacity replay buffer of recently published
// events, bounded both by count and by age.
type ringBuffer struct {
	mu        sync.RWMutex
	events    []bufferedEvent
	cap       int
	retention time.Duration
}

type bufferedEvent struct {
	evt Event
	at  time.Time
}

func newRingBuffer(capacity int, retention time.Duration) *ringBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &ringBuffer{events: make([]bufferedEvent, 0, capacity), cap: capacity, retention: retention}
}

func (b *ringBuffer) add(evt Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, bufferedEvent{evt: evt, at: time.Now()})
	if len(b.events) > b.cap {
		b.events = b.events[len(b.events)-b.cap:]
	}
}

func (b *ringBuffer) after(lastID int64) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var cutoff time.Time
	if b.retention > 0 {
		cutoff = time.Now().Add(-b.retention)
	}
	var out []Event
	for _, be := range b.events {
		if be.evt.ID <= lastID {
			continue
		}
		if !cutoff.IsZero() && be.at.Before(cutoff) {
			continue
		}
		out = append(out, be.evt)
	}
	return out
}
