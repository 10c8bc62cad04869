// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/homestock/internal/middleware"
	"github.com/tomtom215/homestock/internal/session"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router. A nil mw uses DefaultChiMiddlewareConfig
// adjusted by the handler's security configuration.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		cfg := DefaultChiMiddlewareConfig()
		if handler.config != nil {
			cfg = ChiMiddlewareConfigFrom(&handler.config.Security)
		}
		mw = NewChiMiddleware(cfg)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// denySession answers requests without a valid session token.
func denySession(w http.ResponseWriter, r *http.Request, err error) {
	msg := "Your session is invalid or has expired. Please sign in again."
	if errors.Is(err, session.ErrNotSignedIn) {
		msg = "You must be signed in."
	}
	WriteError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, msg)
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	h := router.handler
	mw := router.chiMiddleware
	requireSession := session.Middleware(h.sessions, denySession)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS()) // global so OPTIONS preflight is answered

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(mw.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(mw.RateLimitAuth())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		r.Post("/anonymous", h.SignInAnonymous)
		r.Get("/status", h.SessionStatus)
		r.With(requireSession).Post("/signout", h.SignOut)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Use(requireSession)

		r.Route("/items", func(r chi.Router) {
			r.Get("/", h.ListItems)
			r.Post("/", h.CreateItem)
			r.Get("/{id}", h.GetItem)
			r.Put("/{id}", h.UpdateItem)
			r.Delete("/{id}", h.DeleteItem)
		})
		r.Get("/suggestions", h.Suggestions)
		r.Get("/export.csv", h.ExportCSV)
		r.Post("/export", h.ExportToSink)
		r.Get("/ws", h.WebSocket)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
