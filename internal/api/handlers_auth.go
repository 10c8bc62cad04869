// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/homestock/internal/logging"
	"github.com/tomtom215/homestock/internal/models"
	"github.com/tomtom215/homestock/internal/session"
)

// SessionResponse describes the signed-in identity.
type SessionResponse struct {
	SignedIn  bool             `json:"signed_in"`
	Status    string           `json:"status"`
	Identity  *models.Identity `json:"identity,omitempty"`
	Token     string           `json:"token,omitempty"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty"`
}

func sessionResponse(id *models.Identity, withToken bool) SessionResponse {
	resp := SessionResponse{
		SignedIn: id != nil,
		Status:   models.StatusText(id),
		Identity: id,
	}
	if id != nil && withToken {
		resp.Token = id.Token
		exp := id.TokenExpiry
		resp.ExpiresAt = &exp
	}
	return resp
}

// SignInAnonymous signs in (or returns the existing session) and sets the
// session cookie.
func (h *Handler) SignInAnonymous(w http.ResponseWriter, r *http.Request) {
	id, err := h.sessions.SignInAnonymously(r.Context())
	if err != nil {
		e := h.service.NotifySignInFailed(err)
		logging.Ctx(r.Context()).Error().Err(err).Msg("Anonymous sign-in failed")
		writeServiceError(w, r, e)
		return
	}

	h.setSessionCookie(w, r, id.Token, id.TokenExpiry)
	WriteSuccess(w, r, sessionResponse(id, true))
}

// SignOut ends the session and clears the cookie.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.sessions.SignOut(r.Context())
	h.setSessionCookie(w, r, "", time.Unix(0, 0))
	WriteSuccess(w, r, sessionResponse(nil, false))
}

// SessionStatus reports the current sign-in status.
func (h *Handler) SessionStatus(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, sessionResponse(h.sessions.Current(), false))
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, r *http.Request, token string, expires time.Time) {
	c := &http.Cookie{
		Name:     session.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteLaxMode,
	}
	if token == "" {
		c.MaxAge = -1
	}
	http.SetCookie(w, c)
}
