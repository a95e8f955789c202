package ws

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Gauge receives the connected client count.
type Gauge interface {
	Set(float64)
}

// Hub manages WebSocket connections and per-symbol group subscriptions.
type Hub struct {
	name       string
	clients    map[*Client]bool
	groups     map[string]map[*Client]bool // symbol -> clients
	register   chan *Client
	unregister chan *Client
	done       chan struct{} // closed when Run returns
	encoder    *Encoder
	validGroup func(group string) bool
	gauge      Gauge
	mu         sync.RWMutex
	logger     *zap.Logger
}

// NewHub creates a Hub. validGroup decides whether a client may join a
// group; nil accepts every non-empty group. gauge may be nil.
func NewHub(name string, encoder *Encoder, validGroup func(string) bool, gauge Gauge, logger *zap.Logger) *Hub {
	if validGroup == nil {
		validGroup = func(g string) bool { return g != "" }
	}
	return &Hub{
		name:       name,
		clients:    make(map[*Client]bool),
		groups:     make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		encoder:    encoder,
		validGroup: validGroup,
		gauge:      gauge,
		logger:     logger,
	}
}

// Run processes hub events. Call this in a goroutine.
// Returns when context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("hub shutting down", zap.String("hub", h.name))
			h.shutdown()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.reportCount()
			h.mu.Unlock()
			h.logger.Debug("client registered",
				zap.String("hub", h.name),
				zap.String("connID", client.connID),
				zap.String("protocol", client.protocol),
			)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				// Remove from all groups
				for group := range client.groups {
					if clients, ok := h.groups[group]; ok {
						delete(clients, client)
						if len(clients) == 0 {
							delete(h.groups, group)
						}
					}
				}
				close(client.send)
				h.reportCount()
			}
			h.mu.Unlock()
			h.logger.Debug("client unregistered",
				zap.String("hub", h.name),
				zap.String("connID", client.connID),
			)
		}
	}
}

// enqueue hands a client to Run over ch. It gives up once the hub has stopped.
func (h *Hub) enqueue(ch chan<- *Client, client *Client) bool {
	select {
	case ch <- client:
		return true
	case <-h.done:
		return false
	}
}

// trySend queues f for client unless the client is gone or its buffer is full.
// Send channels are only closed under the write lock, so holding the read
// lock across the membership check and the send keeps it open.
func (h *Hub) trySend(client *Client, f frame) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sendLocked(client, f)
}

// sendLocked must be called with h.mu held.
func (h *Hub) sendLocked(client *Client, f frame) bool {
	if !h.clients[client] {
		return false
	}
	select {
	case client.send <- f:
		return true
	default:
		return false
	}
}

// reportCount must be called with h.mu held.
func (h *Hub) reportCount() {
	if h.gauge != nil {
		h.gauge.Set(float64(len(h.clients)))
	}
}

// shutdown gracefully closes all client connections.
func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.groups = make(map[string]map[*Client]bool)
	h.reportCount()
}

// JoinGroup adds a client to a group. It reports false when the group is rejected.
func (h *Hub) JoinGroup(client *Client, group string) bool {
	if !h.validGroup(group) {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.groups[group] == nil {
		h.groups[group] = make(map[*Client]bool)
	}
	h.groups[group][client] = true
	client.groups[group] = true

	h.logger.Debug("client joined group",
		zap.String("hub", h.name),
		zap.String("connID", client.connID),
		zap.String("group", group),
	)
	return true
}

// LeaveGroup removes a client from a group.
func (h *Hub) LeaveGroup(client *Client, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.groups[group]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.groups, group)
		}
	}
	delete(client.groups, group)

	h.logger.Debug("client left group",
		zap.String("hub", h.name),
		zap.String("connID", client.connID),
		zap.String("group", group),
	)
}

// ActiveGroups returns all groups with at least one subscriber.
func (h *Hub) ActiveGroups() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var groups []string
	for group, clients := range h.groups {
		if len(clients) > 0 {
			groups = append(groups, group)
		}
	}
	return groups
}

// BroadcastReport sends a report to every client subscribed to symbol, as a
// text frame for JSON clients and a compressed binary frame for protobuf
// clients. The binary form is encoded at most once per call.
func (h *Hub) BroadcastReport(symbol string, reportJSON []byte) {
	group := normalizeGroup(symbol)

	h.mu.RLock()
	needBinary := false
	for client := range h.groups[group] {
		if client.protocol == ProtocolProtobuf {
			needBinary = true
			break
		}
	}
	h.mu.RUnlock()

	var binaryMsg []byte
	if needBinary {
		var err error
		if binaryMsg, err = h.encodeBinary(reportJSON); err != nil {
			h.logger.Error("failed to encode report", zap.String("group", group), zap.Error(err))
		}
	}
	textMsg := buildDataMessageJSON(group, reportJSON)

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.groups[group] {
		f := frame{data: textMsg}
		if client.protocol == ProtocolProtobuf {
			if binaryMsg == nil {
				continue
			}
			f = frame{binary: true, data: binaryMsg}
		}

		if !h.sendLocked(client, f) {
			// Buffer full, schedule disconnect
			go h.enqueue(h.unregister, client)
		}
	}
}

func (h *Hub) encodeBinary(reportJSON []byte) ([]byte, error) {
	compressed, err := h.encoder.EncodeReport(reportJSON)
	if err != nil {
		return nil, err
	}
	return buildDataMessageBinary(compressed)
}
