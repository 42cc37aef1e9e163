package broadcast

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/openbay/auction-service/internal/domain"
	"github.com/openbay/auction-service/internal/infrastructure/logger"
	"github.com/openbay/auction-service/internal/infrastructure/metrics"
)

// Envelope is the wire frame delivered to room subscribers.
type Envelope struct {
	Type   domain.EventType `json:"type"`
	Room   string           `json:"room"`
	Data   json.RawMessage  `json:"data"`
	SentAt time.Time        `json:"sent_at"`
	// Origin identifies the publishing instance so the Redis bridge can
	// drop its own echoes.
	Origin string `json:"origin,omitempty"`
}

type roomMessage struct {
	room    string
	payload []byte
}

// Hub keeps per-room subscriber sets and fans published events out to them.
// All deliveries go through a single run loop, so every subscriber of a
// room observes events in publish order. Delivery is at-most-once: a
// subscriber whose send buffer is full is evicted and must reconcile by
// re-fetching state on reconnect.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan roomMessage

	mu    sync.RWMutex
	rooms map[string]map[*Client]bool

	metrics *metrics.AuctionMetrics
}

func NewHub(m *metrics.AuctionMetrics) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan roomMessage, 256),
		rooms:      make(map[string]map[*Client]bool),
		metrics:    m,
	}
}

// Run drives the hub. Start exactly once, in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.deliver(msg.room, msg.payload)
		}
	}
}

// Join subscribes a client to its room. Idempotent.
func (h *Hub) Join(client *Client) {
	h.register <- client
}

// Leave unsubscribes a client and closes its send channel. Idempotent:
// leaving twice is a no-op.
func (h *Hub) Leave(client *Client) {
	h.unregister <- client
}

// Publish enqueues an event for every subscriber of the room and returns.
// The event is on the hub's ordered queue before Publish returns, so a
// caller that observes success knows the broadcast is enqueued.
func (h *Hub) Publish(room string, event domain.EventType, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal broadcast payload", map[string]any{"room": room, "type": string(event), "error": err.Error()})
		return
	}
	frame, err := json.Marshal(Envelope{Type: event, Room: room, Data: data, SentAt: time.Now().UTC()})
	if err != nil {
		logger.Error("failed to marshal broadcast envelope", map[string]any{"room": room, "type": string(event), "error": err.Error()})
		return
	}
	h.broadcast <- roomMessage{room: room, payload: frame}
	if h.metrics != nil {
		h.metrics.RecordBroadcast(string(event))
	}
}

// PublishFrame enqueues an already-encoded envelope, used by the Redis
// bridge for events published on other instances.
func (h *Hub) PublishFrame(room string, frame []byte) {
	h.broadcast <- roomMessage{room: room, payload: frame}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subscribers, ok := h.rooms[client.Room]
	if !ok {
		subscribers = make(map[*Client]bool)
		h.rooms[client.Room] = subscribers
	}
	subscribers[client] = true
	if h.metrics != nil {
		h.metrics.SubscriberJoined()
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subscribers, ok := h.rooms[client.Room]
	if !ok || !subscribers[client] {
		return
	}
	delete(subscribers, client)
	if len(subscribers) == 0 {
		delete(h.rooms, client.Room)
	}
	close(client.Send)
	if h.metrics != nil {
		h.metrics.SubscriberLeft()
	}
}

func (h *Hub) deliver(room string, payload []byte) {
	h.mu.RLock()
	subscribers := make([]*Client, 0, len(h.rooms[room]))
	for client := range h.rooms[room] {
		subscribers = append(subscribers, client)
	}
	h.mu.RUnlock()

	for _, client := range subscribers {
		select {
		case client.Send <- payload:
		default:
			// Slow consumer. Evict instead of blocking the room.
			h.removeClient(client)
		}
	}
}

// SubscriberCount returns the number of clients in a room.
func (h *Hub) SubscriberCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
