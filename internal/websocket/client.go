// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package websocket

import (
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/tomtom215/homestock/internal/inventory"
	"github.com/tomtom215/homestock/internal/logging"
	"github.com/tomtom215/homestock/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 64
)

var clientIDCounter atomic.Uint64

// Client is a middleman between the websocket connection and the hub
type Client struct {
	id      uint64
	hub     *Hub
	conn    *websocket.Conn
	send    chan Message
	limiter *rate.Limiter

	// criteria and rendered are owned by the hub goroutine. rendered is the
	// source generation of the last view sent.
	criteria inventory.Criteria
	rendered uint64
}

// NewClient creates a client with an inbound rate limit taken from the hub.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	limit := rate.Inf
	if hub.cfg.MessagesPerSecond > 0 {
		limit = rate.Limit(hub.cfg.MessagesPerSecond)
	}
	burst := hub.cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		id:      clientIDCounter.Add(1),
		hub:     hub,
		conn:    conn,
		send:    make(chan Message, sendBuffer),
		limiter: rate.NewLimiter(limit, burst),
	}
}

// ID returns the client's connection-ordered identifier
func (c *Client) ID() uint64 {
	return c.id
}

// readPump forwards client messages to the hub until the connection fails.
func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg inboundMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error().Err(err).Msg("unexpected websocket close error")
			}
			return
		}

		if !c.limiter.Allow() {
			metrics.WSMessagesDropped.Inc()
			logging.Debug().Uint64("client_id", c.id).Str("message_type", msg.Type).Msg("websocket client rate limited")
			continue
		}
		metrics.RecordWSMessage("in", msg.Type)
		if !c.hub.submit(c, msg) {
			metrics.WSMessagesDropped.Inc()
		}
	}
}

// writePump writes queued messages and keepalive pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}
			if !ok {
				// The hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				logging.Debug().Err(err).Msg("failed to write JSON message")
				return
			}
			metrics.RecordWSMessage("out", message.Type)

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the client
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
