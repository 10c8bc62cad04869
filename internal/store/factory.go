// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package store

import (
	"context"
	"fmt"

	"github.com/tomtom215/homestock/internal/config"
	"github.com/tomtom215/homestock/internal/logging"
)

// Open builds the configured backend, wrapped with instrumentation.
// natsURL overrides cfg.NATS.URL when non-empty (embedded server).
func Open(ctx context.Context, cfg *config.Config, natsURL string) (*Instrumented, error) {
	var (
		s   Store
		err error
	)

	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		s = NewMemoryStore()
	case config.StoreDriverBadger:
		s, err = OpenBadger(BadgerConfig{Path: cfg.Store.BadgerPath, InMemory: cfg.Store.BadgerInMemory})
	case config.StoreDriverNATS:
		url := cfg.NATS.URL
		if natsURL != "" {
			url = natsURL
		}
		s, err = OpenNATS(ctx, NATSConfig{
			URL:            url,
			Bucket:         cfg.NATS.Bucket,
			Replicas:       cfg.NATS.Replicas,
			ConnectTimeout: cfg.NATS.ConnectTimeout,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			Breaker: BreakerConfig{
				Name:             "nats-kv",
				FailureThreshold: cfg.NATS.BreakerMaxFailures,
				Timeout:          cfg.NATS.BreakerTimeout,
			},
		})
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	logging.Info().Str("driver", cfg.Store.Driver).Msg("Record store opened")
	return Instrument(s, cfg.Store.Driver), nil
}
