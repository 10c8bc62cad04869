// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/homestock/internal/config"
	"github.com/tomtom215/homestock/internal/export"
	"github.com/tomtom215/homestock/internal/inventory"
	"github.com/tomtom215/homestock/internal/logging"
	"github.com/tomtom215/homestock/internal/session"
	ws "github.com/tomtom215/homestock/internal/websocket"
)

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func() bool

// Handler serves the HTTP API.
type Handler struct {
	config    *config.Config
	service   *inventory.Service
	sessions  *session.Provider
	wsHub     *ws.Hub
	sink      export.Sink
	ready     map[string]ReadinessCheck
	startTime time.Time
}

// HandlerDeps are the collaborators of a Handler. Hub, Sink and Ready
// may be nil.
type HandlerDeps struct {
	Config   *config.Config
	Service  *inventory.Service
	Sessions *session.Provider
	Hub      *ws.Hub
	Sink     export.Sink
	Ready    map[string]ReadinessCheck
}

// NewHandler creates a Handler.
func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		config:    deps.Config,
		service:   deps.Service,
		sessions:  deps.Sessions,
		wsHub:     deps.Hub,
		sink:      deps.Sink,
		ready:     deps.Ready,
		startTime: time.Now(),
	}
}

func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin accepts only origins listed in the CORS
// configuration. Browsers always send Origin, so a missing one is rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	if h.config == nil {
		return true
	}

	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// sanitizeLogValue strips control characters and bounds the length of
// client-supplied values before they reach the log.
func sanitizeLogValue(s string) string {
	const maxLen = 200
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			continue
		}
		out = append(out, r)
		if len(out) >= maxLen {
			break
		}
	}
	return string(out)
}
