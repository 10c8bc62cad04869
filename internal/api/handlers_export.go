// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/tomtom215/homestock/internal/logging"
	"github.com/tomtom215/homestock/internal/metrics"
)

// ExportCSV streams the cached inventory as a CSV download.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	f, err := h.service.Export()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	metrics.RecordExport("download", f.Rows, nil)

	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(f.Data); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to write CSV export")
	}
}

// ExportToSink writes the CSV export to the configured sink.
func (h *Handler) ExportToSink(w http.ResponseWriter, r *http.Request) {
	if h.sink == nil {
		WriteError(w, r, http.StatusNotImplemented, ErrCodeNotImplemented, "No export destination is configured.")
		return
	}

	f, loc, err := h.service.ExportTo(r.Context(), h.sink)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, r, map[string]interface{}{
		"sink":     h.sink.Name(),
		"location": loc,
		"file":     f.Name,
		"rows":     f.Rows,
	})
}
