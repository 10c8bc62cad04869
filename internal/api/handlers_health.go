// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package api

import (
	"net/http"
	"sort"
	"time"
)

// HealthLive answers the liveness probe. It never checks dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady answers the readiness probe: 200 when every registered
// check passes, 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(h.ready))
	for name := range h.ready {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make(map[string]bool, len(names))
	ready := true
	for _, name := range names {
		ok := h.ready[name]()
		checks[name] = ok
		ready = ready && ok
	}

	data := map[string]interface{}{
		"ready_to_serve": ready,
		"checks":         checks,
		"uptime":         time.Since(h.startTime).Seconds(),
	}
	if h.sessions != nil {
		data["signed_in"] = h.sessions.Current() != nil
	}

	rw := NewResponseWriter(w, r)
	if !ready {
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Service is not ready", data)
		return
	}
	rw.Success(data)
}
