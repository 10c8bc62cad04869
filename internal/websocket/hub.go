// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package websocket

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/homestock/internal/inventory"
	"github.com/tomtom215/homestock/internal/logging"
	"github.com/tomtom215/homestock/internal/metrics"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types
const (
	MessageTypeView    = "inventory_view"
	MessageTypeNotice  = "notice"
	MessageTypeCleared = "cleared"
	MessageTypePing    = "ping"
	MessageTypePong    = "pong"
	MessageTypeFilter  = "filter"
)

// registerTimeout bounds hand-offs to a hub that is not running.
const registerTimeout = time.Second

// Message is an outbound WebSocket message.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// inboundMessage is a message received from a client.
type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type clientRequest struct {
	client *Client
	msg    inboundMessage
}

// sourceBox lets atomic.Pointer hold an interface value. gen increases
// with every Render.
type sourceBox struct {
	src inventory.ViewSource
	gen uint64
}

// HubConfig configures inbound throttling for every client.
type HubConfig struct {
	MessagesPerSecond float64
	Burst             int
}

// Hub maintains the set of active clients and implements inventory.Presenter.
type Hub struct {
	cfg HubConfig

	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	requests   chan clientRequest
	renders    chan struct{}
	mu         sync.RWMutex

	source     atomic.Pointer[sourceBox]
	generation atomic.Uint64
}

// NewHub creates a new Hub
func NewHub(cfg HubConfig) *Hub {
	return &Hub{
		cfg:        cfg,
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		requests:   make(chan clientRequest, 64),
		renders:    make(chan struct{}, 1),
		clients:    make(map[*Client]bool),
	}
}

// Render schedules a view push to every client. Pending renders coalesce.
func (h *Hub) Render(src inventory.ViewSource) {
	h.source.Store(&sourceBox{src: src, gen: h.generation.Add(1)})
	select {
	case h.renders <- struct{}{}:
	default:
	}
}

// Clear drops the view source and tells clients the session ended.
func (h *Hub) Clear() {
	h.source.Store(nil)
	h.enqueue(Message{Type: MessageTypeCleared})
}

// Notify broadcasts a notice.
func (h *Hub) Notify(n inventory.Notice) {
	h.enqueue(Message{Type: MessageTypeNotice, Data: n})
}

func (h *Hub) enqueue(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		metrics.WSMessagesDropped.Inc()
		logging.Warn().Str("message_type", msg.Type).Msg("broadcast channel full, dropping message")
	}
}

// Add hands a client to the hub. It fails when the hub is not running.
func (h *Hub) Add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-time.After(registerTimeout):
		return false
	}
}

func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-time.After(registerTimeout):
	}
}

// submit passes an inbound client message to the hub goroutine.
func (h *Hub) submit(c *Client, msg inboundMessage) bool {
	select {
	case h.requests <- clientRequest{client: c, msg: msg}:
		return true
	default:
		return false
	}
}

// RunWithContext runs the hub until ctx ends, then closes every client.
// Client lifecycle events take priority over renders and broadcasts.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.register:
			h.addClient(client)
			continue
		case client := <-h.unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case req := <-h.requests:
			h.handleRequest(req)
		case <-h.renders:
			h.renderAll()
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnectionsActive.Set(float64(n))
	logging.Info().Uint64("client_id", c.id).Int("total_clients", n).Msg("websocket client connected")

	if box := h.source.Load(); box != nil {
		h.renderClient(c, box)
	}
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnectionsActive.Set(float64(n))
	logging.Info().Uint64("client_id", c.id).Int("total_clients", n).Msg("websocket client disconnected")
}

func (h *Hub) handleRequest(req clientRequest) {
	h.mu.RLock()
	_, ok := h.clients[req.client]
	h.mu.RUnlock()
	if !ok {
		return
	}

	switch req.msg.Type {
	case MessageTypePing:
		h.sendTo(req.client, Message{Type: MessageTypePong})
	case MessageTypeFilter:
		var c inventory.Criteria
		if len(req.msg.Data) > 0 {
			if err := json.Unmarshal(req.msg.Data, &c); err != nil {
				logging.Debug().Err(err).Uint64("client_id", req.client.id).Msg("invalid filter message")
				return
			}
		}
		req.client.criteria = c
		if box := h.source.Load(); box != nil {
			h.renderClient(req.client, box)
		}
	default:
		logging.Debug().Str("message_type", req.msg.Type).Msg("ignoring unknown websocket message")
	}
}

// renderAll pushes the current view to every client that has not seen it
// yet. A filter or a connect handled after Render already sent it.
func (h *Hub) renderAll() {
	box := h.source.Load()
	if box == nil {
		return
	}
	for _, c := range h.sortedClients() {
		if c.rendered != box.gen {
			h.renderClient(c, box)
		}
	}
}

// renderClient sends c its view of box. The first view of a new source
// drops selections that no longer exist from the client's criteria.
func (h *Hub) renderClient(c *Client, box *sourceBox) {
	var v inventory.View
	if c.rendered != box.gen {
		v, c.criteria = inventory.RefreshView(box.src, c.criteria)
		c.rendered = box.gen
	} else {
		v = box.src.View(c.criteria)
	}
	h.sendTo(c, Message{Type: MessageTypeView, Data: v})
}

// sendTo queues msg for one client, dropping the client if its queue is full.
func (h *Hub) sendTo(c *Client, msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
		close(c.send)
		delete(h.clients, c)
		metrics.WSConnectionsActive.Set(float64(len(h.clients)))
		logging.Warn().Uint64("client_id", c.id).Msg("websocket client too slow, disconnecting")
	}
}

// sortedClients returns the clients in connection order.
func (h *Hub) sortedClients() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

func (h *Hub) broadcastToClients(message Message) {
	for _, c := range h.sortedClients() {
		h.sendTo(c, message)
	}
}

// logGracefulShutdown closes all clients and logs why the hub stopped.
// Cancellation is the expected path, so it is not logged as an error.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	metrics.WSConnectionsActive.Set(0)
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
