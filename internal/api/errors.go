// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/homestock/internal/inventory"
	"github.com/tomtom215/homestock/internal/logging"
	"github.com/tomtom215/homestock/internal/session"
	"github.com/tomtom215/homestock/internal/validation"
)

// statusFor maps an inventory failure to its HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, inventory.ErrItemNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, inventory.ErrConfirmationRequired):
		return http.StatusConflict, ErrCodeConfirmationRequired
	case errors.Is(err, inventory.ErrNothingToExport):
		return http.StatusNotFound, ErrCodeNothingToExport
	case errors.Is(err, inventory.ErrNotSignedIn), errors.Is(err, session.ErrNotSignedIn):
		return http.StatusUnauthorized, ErrCodeUnauthorized
	}

	switch inventory.KindOf(err) {
	case inventory.KindValidation:
		return http.StatusBadRequest, ErrCodeBadRequest
	case inventory.KindAuth:
		return http.StatusUnauthorized, ErrCodeUnauthorized
	case inventory.KindStoreRead:
		return http.StatusServiceUnavailable, ErrCodeStoreError
	case inventory.KindStoreWrite:
		return http.StatusBadGateway, ErrCodeStoreError
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}

// writeServiceError writes err as an enveloped response. Validation
// failures carry per-field details.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	rw := NewResponseWriter(w, r)

	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		apiErr := verr.ToAPIError()
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	status, code := statusFor(err)
	message := "An unexpected error occurred."
	var ierr *inventory.Error
	if errors.As(err, &ierr) {
		message = ierr.Message
	} else {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Unclassified API error")
	}
	rw.Error(status, code, message)
}
