// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package services

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/homestock/internal/logging"
)

// ErrNATSServerStopped is returned when the embedded server stops on its own.
var ErrNATSServerStopped = errors.New("embedded NATS server is not running")

// NATSServer is satisfied by *store.EmbeddedServer.
type NATSServer interface {
	IsRunning() bool
	Shutdown(ctx context.Context) error
}

// EmbeddedNATSService owns the in-process NATS server. The server is
// started before the store connects to it; this service watches it and
// shuts it down when the tree stops.
type EmbeddedNATSService struct {
	server          NATSServer
	checkInterval   time.Duration
	shutdownTimeout time.Duration
	name            string
}

// NewEmbeddedNATSService creates the service for an already running server.
func NewEmbeddedNATSService(server NATSServer, shutdownTimeout time.Duration) *EmbeddedNATSService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &EmbeddedNATSService{
		server:          server,
		checkInterval:   5 * time.Second,
		shutdownTimeout: shutdownTimeout,
		name:            "nats-server",
	}
}

// Serve implements suture.Service.
func (s *EmbeddedNATSService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
			defer cancel()
			if err := s.server.Shutdown(shutdownCtx); err != nil {
				logging.Warn().Err(err).Msg("Embedded NATS shutdown incomplete")
			}
			return ctx.Err()
		case <-ticker.C:
			if !s.server.IsRunning() {
				// Not restartable in place.
				return ErrNATSServerStopped
			}
		}
	}
}

func (s *EmbeddedNATSService) String() string {
	return s.name
}
