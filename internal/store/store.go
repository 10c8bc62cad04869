// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/homestock/internal/models"
)

var (
	// ErrNotFound is returned by Update when the item does not exist.
	ErrNotFound = errors.New("store: item not found")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store: closed")

	// ErrInvalidCollection is returned for an empty or malformed collection path.
	ErrInvalidCollection = errors.New("store: invalid collection path")

	// ErrInvalidItem is returned when an item cannot be stored as given.
	ErrInvalidItem = errors.New("store: invalid item")
)

// Event is a single push from a live query: either the complete current
// collection or an error. Items is never partial.
type Event struct {
	Items []models.Item
	Err   error
}

// Subscription is a live query handle. Events is closed after Close
// returns or the subscribing context ends. Close is idempotent.
type Subscription interface {
	Events() <-chan Event
	Close() error
}

// Store is a document collection store with live queries.
type Store interface {
	// Create stores item under a newly assigned ID and returns the ID.
	// item.ID is ignored.
	Create(ctx context.Context, collection string, item models.Item) (string, error)

	// Update replaces the five editable fields of an existing item.
	// Photo and CreatedAt are left untouched. Returns ErrNotFound when
	// the item does not exist.
	Update(ctx context.Context, collection, id string, fields models.ItemFields) error

	// Delete removes an item. Deleting a missing item is not an error.
	Delete(ctx context.Context, collection, id string) error

	// Subscribe opens a live query on collection. The current collection
	// is pushed immediately, then again after every change.
	Subscribe(ctx context.Context, collection string) (Subscription, error)

	// Close releases the backend. Open subscriptions end.
	Close() error
}

func validateCollection(collection string) error {
	if strings.TrimSpace(collection) == "" || strings.ContainsRune(collection, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidCollection, collection)
	}
	return nil
}

func validateID(id string) error {
	if id == "" || strings.ContainsAny(id, "\x00./ *>") {
		return fmt.Errorf("%w: bad id %q", ErrInvalidItem, id)
	}
	return nil
}

// sortByID gives backends a deterministic snapshot order. Display order
// is imposed by the snapshot cache.
func sortByID(items []models.Item) []models.Item {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

// subscription is the Subscription implementation shared by all backends.
// The backend supplies a loop that emits events until ctx ends.
type subscription struct {
	events chan Event
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func newSubscription(parent context.Context) *subscription {
	ctx, cancel := context.WithCancel(parent)
	return &subscription{
		events: make(chan Event, 1),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

func (s *subscription) start(loop func(ctx context.Context, emit func(Event))) {
	go func() {
		defer close(s.done)
		defer close(s.events)
		loop(s.ctx, s.emit)
	}()
}

// emit delivers ev. A snapshot replaces whatever the consumer has not read
// yet; an error waits behind a pending snapshot so that snapshot still lands.
func (s *subscription) emit(ev Event) {
	if ev.Err != nil {
		select {
		case s.events <- ev:
		case <-s.ctx.Done():
		}
		return
	}
	for {
		select {
		case s.events <- ev:
			return
		case <-s.ctx.Done():
			return
		default:
		}
		select {
		case <-s.events:
		default:
		}
	}
}

func (s *subscription) Events() <-chan Event {
	return s.events
}

func (s *subscription) Close() error {
	s.cancel()
	<-s.done
	return nil
}
