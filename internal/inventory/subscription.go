// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/homestock/internal/logging"
	"github.com/tomtom215/homestock/internal/metrics"
	"github.com/tomtom215/homestock/internal/models"
	"github.com/tomtom215/homestock/internal/store"
)

// active is the Subscribed state.
type active struct {
	uid        string
	collection string
	sub        store.Subscription
	done       chan struct{}
}

// Lifecycle keeps at most one live subscription, bound to the current
// identity, and feeds its pushes into the cache.
type Lifecycle struct {
	base          context.Context
	store         store.Store
	cache         *Cache
	presenter     Presenter
	collectionFor func(uid string) string
	now           func() time.Time
	logger        zerolog.Logger

	mu         sync.Mutex
	current    *active
	subscribed atomic.Bool

	// readFailed is set when the latest push was an error and no
	// snapshot has arrived since; the view then stops reporting Loading.
	readFailed atomic.Bool
}

// NewLifecycle creates an unsubscribed lifecycle. Subscriptions live until
// torn down or until base is canceled.
func NewLifecycle(base context.Context, st store.Store, cache *Cache, p Presenter, collectionFor func(string) string) *Lifecycle {
	if p == nil {
		p = nopPresenter{}
	}
	return &Lifecycle{
		base:          base,
		store:         st,
		cache:         cache,
		presenter:     p,
		collectionFor: collectionFor,
		now:           time.Now,
		logger:        logging.WithComponent("subscription"),
	}
}

// HandleIdentity is the session listener: a non-nil identity (re)subscribes,
// nil tears down and clears the presentation.
func (l *Lifecycle) HandleIdentity(id *models.Identity) {
	if id == nil {
		l.Unsubscribe()
		l.cache.Reset()
		l.readFailed.Store(false)
		l.presenter.Clear()
		return
	}
	if err := l.Subscribe(id); err != nil {
		var e *Error
		if errors.As(err, &e) {
			l.presenter.Notify(e.Notice())
		}
	}
}

// Subscribe tears down any existing subscription and opens a new one on
// the collection of id.
func (l *Lifecycle) Subscribe(id *models.Identity) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.teardownLocked()
	l.cache.Reset()
	l.readFailed.Store(false)

	collection := l.collectionFor(id.UID)
	ctx := logging.ContextWithUserID(l.base, id.UID)
	sub, err := l.store.Subscribe(ctx, collection)
	if err != nil {
		metrics.RecordSnapshotError()
		l.logger.Error().Err(err).Str("collection", collection).Msg("Failed to open live query")
		return newError(KindStoreRead, "subscribe", "Could not load your inventory data.", err)
	}

	a := &active{uid: id.UID, collection: collection, sub: sub, done: make(chan struct{})}
	l.current = a
	l.subscribed.Store(true)
	metrics.SetActiveSubscriptions(1)
	l.logger.Info().Str("user_id", id.UID).Str("collection", collection).Msg("Subscribed to inventory")

	go l.consume(a)
	return nil
}

// Unsubscribe tears down the active subscription. It reports whether there
// was one; calling it while unsubscribed does nothing.
func (l *Lifecycle) Unsubscribe() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.teardownLocked()
}

// Subscribed reports whether a live query is open.
func (l *Lifecycle) Subscribed() bool {
	return l.subscribed.Load()
}

func (l *Lifecycle) teardownLocked() bool {
	a := l.current
	if a == nil {
		return false
	}
	l.current = nil
	l.subscribed.Store(false)

	if err := a.sub.Close(); err != nil {
		l.logger.Warn().Err(err).Msg("Error closing live query")
	}
	<-a.done
	metrics.SetActiveSubscriptions(0)
	l.logger.Info().Str("user_id", a.uid).Msg("Unsubscribed from inventory")
	return true
}

func (l *Lifecycle) consume(a *active) {
	defer close(a.done)
	for ev := range a.sub.Events() {
		if ev.Err != nil {
			l.handlePushError(a, ev.Err)
			continue
		}
		l.cache.Replace(ev.Items)
		l.readFailed.Store(false)
		metrics.RecordSnapshot(len(ev.Items))
		l.logger.Debug().Int("items", len(ev.Items)).Msg("Applied snapshot")
		l.presenter.Render(l)
	}
}

func (l *Lifecycle) handlePushError(a *active, err error) {
	metrics.RecordSnapshotError()
	l.logger.Error().Err(err).Str("collection", a.collection).Msg("Live query push failed")
	l.readFailed.Store(true)
	e := newError(KindStoreRead, "push", "Could not load your inventory data.", fmt.Errorf("collection %s: %w", a.collection, err))
	l.presenter.Notify(e.Notice())
	l.presenter.Render(l)
}

// View builds the current view under c.
func (l *Lifecycle) View(c Criteria) View {
	loading := !l.cache.Loaded() && !l.readFailed.Load() && l.Subscribed()
	return BuildView(l.cache.Get(), loading, c, l.now())
}
