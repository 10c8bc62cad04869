// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/homestock/internal/logging"
	"github.com/tomtom215/homestock/internal/metrics"
	"github.com/tomtom215/homestock/internal/models"
)

// ErrNotSignedIn is returned when an operation needs an identity and there is none.
var ErrNotSignedIn = errors.New("session: not signed in")

// Listener receives identity transitions. nil means signed out.
type Listener func(*models.Identity)

// Provider holds the current identity and notifies listeners of changes.
//
// Listeners run synchronously on the goroutine that caused the change and
// must not call back into SignInAnonymously or SignOut.
type Provider struct {
	tokens *TokenManager

	// notifyMu serializes transitions with their notifications so every
	// listener sees them in the same order.
	notifyMu sync.Mutex

	mu        sync.RWMutex
	current   *models.Identity
	listeners map[uint64]Listener
	nextID    uint64
}

// NewProvider returns a signed-out provider.
func NewProvider(tokens *TokenManager) *Provider {
	return &Provider{tokens: tokens, listeners: make(map[uint64]Listener)}
}

// SignInAnonymously signs in with a fresh anonymous UID. When already
// signed in, the current identity is returned unchanged.
func (p *Provider) SignInAnonymously(ctx context.Context) (*models.Identity, error) {
	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()

	if cur := p.Current(); cur != nil {
		return cur, nil
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordSignIn(err)
		return nil, err
	}

	uid := uuid.NewString()
	token, expires, err := p.tokens.Issue(uid, true)
	metrics.RecordSignIn(err)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Anonymous sign-in failed")
		return nil, fmt.Errorf("anonymous sign-in: %w", err)
	}

	id := &models.Identity{
		UID:         uid,
		Anonymous:   true,
		SignedInAt:  p.tokens.now(),
		Token:       token,
		TokenExpiry: expires,
	}

	p.mu.Lock()
	p.current = id
	p.mu.Unlock()

	logging.Ctx(ctx).Info().Str("user_id", uid).Msg("Signed in anonymously")
	p.notify(id)
	return id.Clone(), nil
}

// SignOut clears the current identity. Signing out while signed out is a no-op.
func (p *Provider) SignOut(ctx context.Context) {
	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()

	p.mu.Lock()
	prev := p.current
	p.current = nil
	p.mu.Unlock()

	if prev == nil {
		return
	}
	logging.Ctx(ctx).Info().Str("user_id", prev.UID).Msg("Signed out")
	p.notify(nil)
}

// Current returns a copy of the current identity, or nil.
func (p *Provider) Current() *models.Identity {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current.Clone()
}

// OnIdentityChange registers l, calls it once with the current identity
// and returns a function that unregisters it.
func (p *Provider) OnIdentityChange(l Listener) (unregister func()) {
	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()

	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = l
	cur := p.current.Clone()
	p.mu.Unlock()

	l(cur)

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.listeners, id)
			p.mu.Unlock()
		})
	}
}

// Authenticate resolves a bearer token to the current identity. Tokens
// minted for an earlier identity are rejected.
func (p *Provider) Authenticate(token string) (*models.Identity, error) {
	claims, err := p.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	cur := p.Current()
	if cur == nil {
		return nil, ErrNotSignedIn
	}
	if claims.Subject != cur.UID {
		return nil, fmt.Errorf("%w: token belongs to a previous session", ErrInvalidToken)
	}
	return cur, nil
}

// notify must be called with notifyMu held.
func (p *Provider) notify(id *models.Identity) {
	p.mu.RLock()
	keys := make([]uint64, 0, len(p.listeners))
	for k := range p.listeners {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	ls := make([]Listener, 0, len(keys))
	for _, k := range keys {
		ls = append(ls, p.listeners[k])
	}
	p.mu.RUnlock()

	for _, l := range ls {
		l(id.Clone())
	}
}

// SessionAge reports how long the current identity has been signed in.
func (p *Provider) SessionAge() time.Duration {
	cur := p.Current()
	if cur == nil {
		return 0
	}
	return p.tokens.now().Sub(cur.SignedInAt)
}
