package ws

import (
	"context"
	"encoding/json"
	"sync"

	"taskmanager/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	connectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "task_manager_ws_clients",
		Help: "Connected task event stream clients",
	})
	droppedMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "task_manager_ws_dropped_total",
		Help: "Event messages dropped because a client send buffer was full",
	})
)

// Hub fans task events out to connected websocket clients. It implements
// events.Publisher.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	log     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		log:     log,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	connectedClients.Inc()
	h.log.Debug("ws client registered", zap.String("user_id", c.UserID), zap.Int("clients", n))
}

// Unregister removes c and closes its send channel. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.Send)
	}
	h.mu.Unlock()

	if ok {
		connectedClients.Dec()
		h.log.Debug("ws client unregistered", zap.String("user_id", c.UserID))
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish never blocks: a client whose buffer is full misses the event.
func (h *Hub) Publish(_ context.Context, ev domain.Event) error {
	msg, err := json.Marshal(EventPayload{Type: MsgEvent, Event: ev})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if !c.wants(ev) {
			continue
		}
		select {
		case c.Send <- msg:
		default:
			droppedMessages.Inc()
			h.log.Warn("ws send buffer full, dropping event",
				zap.String("user_id", c.UserID),
				zap.String("type", string(ev.Type)),
			)
		}
	}
	return nil
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.Unregister(c)
	}
}
