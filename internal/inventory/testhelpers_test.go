// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package inventory

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/homestock/internal/logging"
	"github.com/tomtom215/homestock/internal/models"
	"github.com/tomtom215/homestock/internal/store"
)

func init() {
	logging.Init(logging.Config{Level: "disabled", Output: io.Discard})
}

const waitTimeout = 2 * time.Second

func collectionFor(uid string) string {
	return "artifacts/test/public/data/inventory"
}

// recordingPresenter captures everything the core pushes.
type recordingPresenter struct {
	mu      sync.Mutex
	renders int
	clears  int
	notices []Notice
	last    ViewSource
}

func (p *recordingPresenter) Render(src ViewSource) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.renders++
	p.last = src
}

func (p *recordingPresenter) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clears++
}

func (p *recordingPresenter) Notify(n Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notices = append(p.notices, n)
}

func (p *recordingPresenter) counts() (renders, clears int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.renders, p.clears
}

func (p *recordingPresenter) lastNotice() Notice {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.notices) == 0 {
		return Notice{}
	}
	return p.notices[len(p.notices)-1]
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

type staticIdentity struct {
	mu sync.Mutex
	id *models.Identity
}

func (s *staticIdentity) Current() *models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id.Clone()
}

func (s *staticIdentity) set(id *models.Identity) {
	s.mu.Lock()
	s.id = id
	s.mu.Unlock()
}

// scriptedStore hands out subscriptions whose events the test controls.
type scriptedStore struct {
	store.Store

	mu   sync.Mutex
	subs []*scriptedSub
	err  error
}

type scriptedSub struct {
	events chan store.Event
	once   sync.Once
	closes int
	mu     sync.Mutex
}

func (s *scriptedSub) Events() <-chan store.Event { return s.events }

func (s *scriptedSub) Close() error {
	s.mu.Lock()
	s.closes++
	s.mu.Unlock()
	s.once.Do(func() { close(s.events) })
	return nil
}

func (s *scriptedSub) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

func (s *scriptedStore) Subscribe(_ context.Context, _ string) (store.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	sub := &scriptedSub{events: make(chan store.Event, 4)}
	s.subs = append(s.subs, sub)
	return sub, nil
}

func (s *scriptedStore) sub(i int) *scriptedSub {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs[i]
}

func (s *scriptedStore) subCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func eventOf(items ...models.Item) store.Event { return store.Event{Items: items} }

func storeError(err error) store.Event { return store.Event{Err: err} }
