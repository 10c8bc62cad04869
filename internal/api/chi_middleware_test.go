// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/homestock/internal/config"
	"github.com/tomtom215/homestock/internal/inventory"
	"github.com/tomtom215/homestock/internal/session"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestChiMiddlewareConfigFrom(t *testing.T) {
	t.Parallel()

	cfg := ChiMiddlewareConfigFrom(&config.SecurityConfig{
		CORSOrigins:       []string{"https://home.example"},
		RateLimitReqs:     50,
		RateLimitWindow:   30 * time.Second,
		AuthRateLimitReqs: 3,
	})
	if cfg.RateLimitRequests != 50 || cfg.RateLimitWindow != 30*time.Second || cfg.AuthRateLimitRequests != 3 {
		t.Errorf("config = %+v", cfg)
	}

	defaults := ChiMiddlewareConfigFrom(&config.SecurityConfig{})
	if defaults.RateLimitRequests != 100 || defaults.AuthRateLimitRequests != 10 {
		t.Errorf("defaults = %+v", defaults)
	}
}

func TestRateLimit_Enveloped429(t *testing.T) {
	t.Parallel()

	mw := NewChiMiddleware(&ChiMiddlewareConfig{RateLimitRequests: 2, RateLimitWindow: time.Minute})
	h := mw.RateLimit()(okHandler)

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
		r.RemoteAddr = "192.0.2.1:1234"
		h.ServeHTTP(w, r)
		codes = append(codes, w.Code)
		last = w
	}
	if fmt.Sprint(codes) != "[200 200 429]" {
		t.Fatalf("codes = %v", codes)
	}

	var body APIResponse
	if err := json.Unmarshal(last.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Success || body.Error == nil || body.Error.Code != "TOO_MANY_REQUESTS" {
		t.Errorf("body = %+v", body)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	t.Parallel()

	mw := NewChiMiddleware(&ChiMiddlewareConfig{RateLimitRequests: 1, RateLimitWindow: time.Minute, RateLimitDisabled: true})
	h := mw.RateLimit()(okHandler)
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, w.Code)
		}
	}
}

func TestAPISecurityHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		forwarded string
		wantHSTS  bool
	}{
		{"plain http", "", false},
		{"behind tls proxy", "https", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-Proto", tt.forwarded)
			}
			APISecurityHeaders()(okHandler).ServeHTTP(w, r)

			if w.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Error("missing nosniff")
			}
			if w.Header().Get("X-Frame-Options") != "DENY" {
				t.Error("missing X-Frame-Options")
			}
			if got := w.Header().Get("Strict-Transport-Security") != ""; got != tt.wantHSTS {
				t.Errorf("HSTS present = %v, want %v", got, tt.wantHSTS)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	req, _ := http.NewRequest(http.MethodOptions, f.server.URL+"/api/v1/items", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestCheckWebSocketOrigin(t *testing.T) {
	t.Parallel()

	h := NewHandler(HandlerDeps{Config: testConfig()})
	tests := []struct {
		origin string
		want   bool
	}{
		{"", false},
		{"http://localhost:3000", true},
		{"http://evil.example", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		if got := h.checkWebSocketOrigin(r); got != tt.want {
			t.Errorf("origin %q: got %v, want %v", tt.origin, got, tt.want)
		}
	}
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", &inventory.Error{Kind: inventory.KindValidation, Err: inventory.ErrItemNotFound}, http.StatusNotFound, ErrCodeNotFound},
		{"confirmation", &inventory.Error{Kind: inventory.KindValidation, Err: inventory.ErrConfirmationRequired}, http.StatusConflict, ErrCodeConfirmationRequired},
		{"nothing to export", &inventory.Error{Kind: inventory.KindValidation, Err: inventory.ErrNothingToExport}, http.StatusNotFound, ErrCodeNothingToExport},
		{"not signed in", &inventory.Error{Kind: inventory.KindValidation, Err: inventory.ErrNotSignedIn}, http.StatusUnauthorized, ErrCodeUnauthorized},
		{"session", session.ErrNotSignedIn, http.StatusUnauthorized, ErrCodeUnauthorized},
		{"validation", &inventory.Error{Kind: inventory.KindValidation}, http.StatusBadRequest, ErrCodeBadRequest},
		{"auth", &inventory.Error{Kind: inventory.KindAuth}, http.StatusUnauthorized, ErrCodeUnauthorized},
		{"store read", &inventory.Error{Kind: inventory.KindStoreRead}, http.StatusServiceUnavailable, ErrCodeStoreError},
		{"store write", &inventory.Error{Kind: inventory.KindStoreWrite}, http.StatusBadGateway, ErrCodeStoreError},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := statusFor(tt.err)
			if status != tt.status || code != tt.code {
				t.Errorf("statusFor = (%d, %s), want (%d, %s)", status, code, tt.status, tt.code)
			}
		})
	}
}
