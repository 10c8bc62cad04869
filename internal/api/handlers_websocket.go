// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package api

import (
	"net/http"

	"github.com/tomtom215/homestock/internal/logging"
	ws "github.com/tomtom215/homestock/internal/websocket"
)

// WebSocket upgrades the connection and attaches it to the hub, which
// immediately sends the current view.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		logging.Warn().Msg("WebSocket connection rejected: hub not initialized")
		NewResponseWriter(w, r).ServiceUnavailable("WebSocket service unavailable")
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("WebSocket upgrade error")
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	if !h.wsHub.Add(client) {
		logging.Warn().Msg("WebSocket hub not accepting clients")
		_ = conn.Close()
		return
	}
	client.Start()
}
