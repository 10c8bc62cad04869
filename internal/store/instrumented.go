// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package store

import (
	"context"
	"time"

	"github.com/tomtom215/homestock/internal/logging"
	"github.com/tomtom215/homestock/internal/metrics"
	"github.com/tomtom215/homestock/internal/models"
)

// Instrumented wraps a Store with Prometheus timing and debug logging.
type Instrumented struct {
	next   Store
	driver string
}

// Instrument decorates next; driver becomes the metrics label.
func Instrument(next Store, driver string) *Instrumented {
	return &Instrumented{next: next, driver: driver}
}

// Unwrap returns the decorated store.
func (s *Instrumented) Unwrap() Store {
	return s.next
}

func (s *Instrumented) observe(ctx context.Context, op, collection string, start time.Time, err error) {
	metrics.RecordStoreOperation(s.driver, op, time.Since(start), err)
	event := logging.Ctx(ctx).Debug()
	if err != nil {
		event = logging.Ctx(ctx).Warn().Err(err)
	}
	event.Str("driver", s.driver).
		Str("op", op).
		Str("collection", collection).
		Dur("duration", time.Since(start)).
		Msg("Store operation")
}

func (s *Instrumented) Create(ctx context.Context, collection string, item models.Item) (string, error) {
	start := time.Now()
	id, err := s.next.Create(ctx, collection, item)
	s.observe(ctx, "create", collection, start, err)
	return id, err
}

func (s *Instrumented) Update(ctx context.Context, collection, id string, fields models.ItemFields) error {
	start := time.Now()
	err := s.next.Update(ctx, collection, id, fields)
	s.observe(ctx, "update", collection, start, err)
	return err
}

func (s *Instrumented) Delete(ctx context.Context, collection, id string) error {
	start := time.Now()
	err := s.next.Delete(ctx, collection, id)
	s.observe(ctx, "delete", collection, start, err)
	return err
}

func (s *Instrumented) Subscribe(ctx context.Context, collection string) (Subscription, error) {
	start := time.Now()
	sub, err := s.next.Subscribe(ctx, collection)
	s.observe(ctx, "subscribe", collection, start, err)
	return sub, err
}

func (s *Instrumented) Close() error {
	return s.next.Close()
}
