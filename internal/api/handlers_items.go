// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/homestock/internal/inventory"
	"github.com/tomtom215/homestock/internal/models"
)

const (
	maxJSONBodyBytes = 64 << 10
	// multipartOverhead covers the text fields and boundaries of an upload.
	multipartOverhead = 64 << 10
	photoFormField    = "photo"
)

// criteriaFromQuery reads the filter criteria from the query string.
func criteriaFromQuery(r *http.Request) inventory.Criteria {
	q := r.URL.Query()
	return inventory.Criteria{
		Search:    q.Get("search"),
		Room:      q.Get("room"),
		Container: q.Get("container"),
		Category:  q.Get("category"),
	}
}

// ListItems returns the filtered inventory view.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, h.service.View(criteriaFromQuery(r)))
}

// GetItem returns one cached item.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Item(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, r, item)
}

// CreateItem adds an item from a JSON body, or from a multipart form
// carrying an optional photo file.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	fields, photo, ok := h.readItemRequest(w, r)
	if !ok {
		return
	}

	item, err := h.service.AddItem(r.Context(), fields, photo)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(item)
}

// UpdateItem replaces the editable fields of an item.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var fields models.ItemFields
	if !decodeJSON(w, r, &fields) {
		return
	}

	item, err := h.service.EditItem(r.Context(), chi.URLParam(r, "id"), fields)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, r, item)
}

// DeleteItem removes an item. Without confirm=true it answers 409 with
// the confirmation prompt.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

	item, err := h.service.DeleteItem(r.Context(), chi.URLParam(r, "id"), confirmed)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, r, map[string]interface{}{"deleted": item})
}

// Suggestions returns the distinct rooms, containers and categories.
func (h *Handler) Suggestions(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, h.service.Suggestions())
}

func (h *Handler) readItemRequest(w http.ResponseWriter, r *http.Request) (models.ItemFields, []byte, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var fields models.ItemFields
		return fields, nil, decodeJSON(w, r, &fields)
	}

	limit := h.config.Imaging.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		writeBodyError(w, r, err, "Invalid upload")
		return models.ItemFields{}, nil, false
	}

	fields := models.ItemFields{
		Name:           r.FormValue("name"),
		Category:       r.FormValue("category"),
		Room:           r.FormValue("room"),
		Container:      r.FormValue("container"),
		ExpirationDate: r.FormValue("expiration_date"),
	}

	file, header, err := r.FormFile(photoFormField)
	if errors.Is(err, http.ErrMissingFile) {
		return fields, nil, true
	}
	if err != nil {
		writeBodyError(w, r, err, "Invalid photo upload")
		return models.ItemFields{}, nil, false
	}
	defer file.Close()

	if header.Size > limit {
		WriteError(w, r, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "The photo is too large.")
		return models.ItemFields{}, nil, false
	}
	photo, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		writeBodyError(w, r, err, "Invalid photo upload")
		return models.ItemFields{}, nil, false
	}
	if int64(len(photo)) > limit {
		WriteError(w, r, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "The photo is too large.")
		return models.ItemFields{}, nil, false
	}
	return fields, photo, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeBodyError(w, r, err, "Invalid request body")
		return false
	}
	return true
}

func writeBodyError(w http.ResponseWriter, r *http.Request, err error, message string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		WriteError(w, r, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "Request body too large")
		return
	}
	NewResponseWriter(w, r).BadRequest(message)
}
