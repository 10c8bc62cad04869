// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/homestock/internal/config"
	"github.com/tomtom215/homestock/internal/export"
	"github.com/tomtom215/homestock/internal/imaging"
	"github.com/tomtom215/homestock/internal/inventory"
	"github.com/tomtom215/homestock/internal/logging"
	"github.com/tomtom215/homestock/internal/session"
	"github.com/tomtom215/homestock/internal/store"
)

func init() {
	logging.Init(logging.Config{Level: "disabled", Output: io.Discard})
}

func testConfig() *config.Config {
	return &config.Config{
		Security: config.SecurityConfig{
			JWTSecret:         "test-secret-that-is-long-enough-for-hs256",
			SessionTimeout:    time.Hour,
			RateLimitDisabled: true,
			CORSOrigins:       []string{"http://localhost:3000"},
		},
		Store: config.StoreConfig{
			Driver:             config.StoreDriverMemory,
			AppID:              "test",
			CollectionTemplate: "artifacts/{app_id}/public/data/inventory",
		},
		Imaging: config.ImagingConfig{MaxDimension: 500, Quality: 80, MaxUploadBytes: 1 << 20},
	}
}

type fixture struct {
	cfg      *config.Config
	store    *store.MemoryStore
	sessions *session.Provider
	service  *inventory.Service
	server   *httptest.Server
	token    string
}

func newFixture(t *testing.T, sink export.Sink) *fixture {
	t.Helper()

	cfg := testConfig()
	tokens, err := session.NewTokenManager(&cfg.Security)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	sessions := session.NewProvider(tokens)

	ctx, cancel := context.WithCancel(context.Background())
	st := store.NewMemoryStore()
	svc := inventory.NewService(ctx, inventory.Options{
		Store:         st,
		Identity:      sessions,
		CollectionFor: cfg.Store.CollectionPath,
		Photos:        imaging.New(cfg.Imaging),
	})
	unregister := sessions.OnIdentityChange(svc.Lifecycle().HandleIdentity)

	h := NewHandler(HandlerDeps{
		Config:   cfg,
		Service:  svc,
		Sessions: sessions,
		Sink:     sink,
		Ready:    map[string]ReadinessCheck{"store": func() bool { return true }},
	})
	srv := httptest.NewServer(NewRouter(h, nil).Setup())

	t.Cleanup(func() {
		srv.Close()
		unregister()
		svc.Lifecycle().Unsubscribe()
		cancel()
		_ = st.Close()
	})

	return &fixture{cfg: cfg, store: st, sessions: sessions, service: svc, server: srv}
}

// signIn signs in through the API and waits for the first snapshot.
func (f *fixture) signIn(t *testing.T) {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/v1/auth/anonymous", nil, "")
	var body struct {
		Data SessionResponse `json:"data"`
	}
	decodeEnvelope(t, resp, http.StatusOK, &body)
	f.token = body.Data.Token
	if f.token == "" {
		t.Fatal("sign-in returned no token")
	}
	eventually(t, func() bool { return !f.service.View(inventory.Criteria{}).Loading })
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}, contentType string) *http.Response {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequest(method, f.server.URL+path, reader)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response, wantStatus int, v interface{}) {
	t.Helper()
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("status = %d, want %d; body=%s", resp.StatusCode, wantStatus, data)
	}
	if v == nil {
		return
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}
