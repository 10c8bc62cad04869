// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package services

import (
	"context"
	"fmt"

	"github.com/tomtom215/homestock/internal/logging"
	"github.com/tomtom215/homestock/internal/models"
)

// SessionProvider is satisfied by *session.Provider.
type SessionProvider interface {
	SignInAnonymously(ctx context.Context) (*models.Identity, error)
	SignOut(ctx context.Context)
}

// SessionService signs in anonymously when the tree starts so the live
// query is running before the first client connects. A failed sign-in is
// reported through onFailure and returned, and suture retries it with
// backoff. On shutdown the session is signed out, which tears down the
// live query.
type SessionService struct {
	provider  SessionProvider
	onFailure func(error)
	name      string
}

// NewSessionService creates the startup sign-in service. onFailure may be nil.
func NewSessionService(provider SessionProvider, onFailure func(error)) *SessionService {
	return &SessionService{
		provider:  provider,
		onFailure: onFailure,
		name:      "session",
	}
}

// Serve implements suture.Service.
func (s *SessionService) Serve(ctx context.Context) error {
	id, err := s.provider.SignInAnonymously(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.onFailure != nil {
			s.onFailure(err)
		}
		return fmt.Errorf("anonymous sign-in failed: %w", err)
	}
	logging.Info().Str("user_id", id.UID).Msg("Session established")

	<-ctx.Done()
	s.provider.SignOut(context.WithoutCancel(ctx))
	return ctx.Err()
}

func (s *SessionService) String() string {
	return s.name
}
