// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/homestock/internal/logging"
	"github.com/tomtom215/homestock/internal/models"
)

func init() {
	logging.Init(logging.Config{Level: "disabled", Output: io.Discard})
}

var (
	_ suture.Service = (*HTTPServerService)(nil)
	_ suture.Service = (*WebSocketHubService)(nil)
	_ suture.Service = (*SessionService)(nil)
	_ suture.Service = (*EmbeddedNATSService)(nil)
)

// serveAsync runs svc.Serve and returns its result channel.
func serveAsync(ctx context.Context, svc suture.Service) <-chan error {
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()
	return errCh
}

func waitErr(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
		return nil
	}
}

// mockHTTPServer blocks in ListenAndServe until Shutdown.
type mockHTTPServer struct {
	listenErr   error
	shutdownErr error
	started     chan struct{}
	stopCh      chan struct{}
	shutdowns   atomic.Int32
}

func newMockHTTPServer() *mockHTTPServer {
	return &mockHTTPServer{started: make(chan struct{}, 1), stopCh: make(chan struct{})}
}

func (m *mockHTTPServer) ListenAndServe() error {
	m.started <- struct{}{}
	if m.listenErr != nil {
		return m.listenErr
	}
	<-m.stopCh
	return http.ErrServerClosed
}

func (m *mockHTTPServer) Shutdown(context.Context) error {
	m.shutdowns.Add(1)
	close(m.stopCh)
	return m.shutdownErr
}

func TestHTTPServerService(t *testing.T) {
	t.Run("default timeout", func(t *testing.T) {
		if svc := NewHTTPServerService(newMockHTTPServer(), -time.Second); svc.shutdownTimeout != 10*time.Second {
			t.Errorf("shutdownTimeout = %v", svc.shutdownTimeout)
		}
	})

	t.Run("graceful shutdown", func(t *testing.T) {
		server := newMockHTTPServer()
		ctx, cancel := context.WithCancel(context.Background())
		errCh := serveAsync(ctx, NewHTTPServerService(server, time.Second))

		<-server.started
		cancel()
		if err := waitErr(t, errCh); !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
		if server.shutdowns.Load() != 1 {
			t.Errorf("Shutdown called %d times", server.shutdowns.Load())
		}
	})

	t.Run("startup failure", func(t *testing.T) {
		bindErr := errors.New("bind: address already in use")
		server := newMockHTTPServer()
		server.listenErr = bindErr

		err := NewHTTPServerService(server, time.Second).Serve(context.Background())
		if !errors.Is(err, bindErr) {
			t.Errorf("err = %v, want wrapped bind error", err)
		}
	})

	t.Run("shutdown failure", func(t *testing.T) {
		shutdownErr := errors.New("shutdown timeout")
		server := newMockHTTPServer()
		server.shutdownErr = shutdownErr
		ctx, cancel := context.WithCancel(context.Background())
		errCh := serveAsync(ctx, NewHTTPServerService(server, time.Second))

		<-server.started
		cancel()
		if err := waitErr(t, errCh); !errors.Is(err, shutdownErr) {
			t.Errorf("err = %v, want shutdown error", err)
		}
	})
}

type mockHub struct{ runs atomic.Int32 }

func (m *mockHub) RunWithContext(ctx context.Context) error {
	m.runs.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func TestWebSocketHubService(t *testing.T) {
	hub := &mockHub{}
	svc := NewWebSocketHubService(hub)
	if svc.String() != "websocket-hub" {
		t.Errorf("String() = %q", svc.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := serveAsync(ctx, svc)
	cancel()
	if err := waitErr(t, errCh); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
	if hub.runs.Load() != 1 {
		t.Errorf("RunWithContext called %d times", hub.runs.Load())
	}
}

type mockSessions struct {
	mu       sync.Mutex
	err      error
	signIns  int
	signOuts int
	signedIn chan struct{}
}

func (m *mockSessions) SignInAnonymously(context.Context) (*models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signIns++
	if m.err != nil {
		return nil, m.err
	}
	if m.signedIn != nil {
		close(m.signedIn)
		m.signedIn = nil
	}
	return &models.Identity{UID: "uid-1", Anonymous: true}, nil
}

func (m *mockSessions) SignOut(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signOuts++
}

func TestSessionService(t *testing.T) {
	t.Run("signs in then out", func(t *testing.T) {
		signedIn := make(chan struct{})
		sessions := &mockSessions{signedIn: signedIn}
		ctx, cancel := context.WithCancel(context.Background())
		errCh := serveAsync(ctx, NewSessionService(sessions, nil))

		<-signedIn
		cancel()
		if err := waitErr(t, errCh); !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v", err)
		}
		sessions.mu.Lock()
		defer sessions.mu.Unlock()
		if sessions.signIns != 1 || sessions.signOuts != 1 {
			t.Errorf("signIns=%d signOuts=%d, want 1/1", sessions.signIns, sessions.signOuts)
		}
	})

	t.Run("failure is reported and returned", func(t *testing.T) {
		authErr := errors.New("auth backend down")
		sessions := &mockSessions{err: authErr}

		var reported error
		svc := NewSessionService(sessions, func(err error) { reported = err })
		err := svc.Serve(context.Background())

		if !errors.Is(err, authErr) {
			t.Errorf("err = %v, want wrapped auth error", err)
		}
		if !errors.Is(reported, authErr) {
			t.Errorf("reported = %v", reported)
		}
		if sessions.signOuts != 0 {
			t.Error("SignOut called after failed sign-in")
		}
	})

	t.Run("canceled context is not a failure", func(t *testing.T) {
		sessions := &mockSessions{err: context.Canceled}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		called := false
		err := NewSessionService(sessions, func(error) { called = true }).Serve(ctx)
		if !errors.Is(err, context.Canceled) || called {
			t.Errorf("err = %v, onFailure called = %v", err, called)
		}
	})
}

type mockNATSServer struct {
	running   atomic.Bool
	shutdowns atomic.Int32
}

func (m *mockNATSServer) IsRunning() bool { return m.running.Load() }

func (m *mockNATSServer) Shutdown(context.Context) error {
	m.shutdowns.Add(1)
	m.running.Store(false)
	return nil
}

func TestEmbeddedNATSService(t *testing.T) {
	t.Run("shuts down on cancel", func(t *testing.T) {
		server := &mockNATSServer{}
		server.running.Store(true)
		svc := NewEmbeddedNATSService(server, time.Second)
		svc.checkInterval = 10 * time.Millisecond

		ctx, cancel := context.WithCancel(context.Background())
		errCh := serveAsync(ctx, svc)
		time.Sleep(30 * time.Millisecond)
		cancel()

		if err := waitErr(t, errCh); !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v", err)
		}
		if server.shutdowns.Load() != 1 {
			t.Errorf("Shutdown called %d times", server.shutdowns.Load())
		}
	})

	t.Run("reports a stopped server", func(t *testing.T) {
		server := &mockNATSServer{}
		svc := NewEmbeddedNATSService(server, time.Second)
		svc.checkInterval = 10 * time.Millisecond

		errCh := serveAsync(context.Background(), svc)
		if err := waitErr(t, errCh); !errors.Is(err, ErrNATSServerStopped) {
			t.Errorf("err = %v, want ErrNATSServerStopped", err)
		}
	})
}
