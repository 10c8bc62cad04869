// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package session

import (
	"context"
	"net/http"
	"strings"

	"github.com/tomtom215/homestock/internal/logging"
	"github.com/tomtom215/homestock/internal/models"
)

// TokenCookie is the cookie name accepted in place of a Bearer header.
const TokenCookie = "homestock_token"

type contextKey string

const identityContextKey contextKey = "identity"

// ContextWithIdentity returns ctx carrying id and its UID for logging.
func ContextWithIdentity(ctx context.Context, id *models.Identity) context.Context {
	ctx = context.WithValue(ctx, identityContextKey, id)
	return logging.ContextWithUserID(ctx, id.UID)
}

// IdentityFromContext returns the authenticated identity, or nil.
func IdentityFromContext(ctx context.Context) *models.Identity {
	id, _ := ctx.Value(identityContextKey).(*models.Identity)
	return id
}

// DenyFunc writes the rejection for an unauthenticated request.
type DenyFunc func(w http.ResponseWriter, r *http.Request, err error)

// Middleware returns an HTTP middleware that requires a token for the
// current identity. deny may be nil, in which case a plain 401 is written.
func Middleware(p *Provider, deny DenyFunc) func(http.Handler) http.Handler {
	if deny == nil {
		deny = func(w http.ResponseWriter, _ *http.Request, _ error) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				deny(w, r, ErrNotSignedIn)
				return
			}

			id, err := p.Authenticate(token)
			if err != nil {
				logging.Ctx(r.Context()).Debug().Err(err).Msg("Rejected session token")
				deny(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), id)))
		})
	}
}

// ExtractToken reads the token from the Authorization header, then the cookie.
func ExtractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(TokenCookie); err == nil {
		return c.Value
	}
	return ""
}
