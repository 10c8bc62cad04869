// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/homestock/internal/config"
	"github.com/tomtom215/homestock/internal/logging"
	"github.com/tomtom215/homestock/internal/models"
)

const testSecret = "test-secret-that-is-at-least-32-characters-long"

func init() {
	logging.SetLevelString("disabled")
}

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	tm, err := NewTokenManager(&config.SecurityConfig{JWTSecret: testSecret, SessionTimeout: time.Hour})
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	return NewProvider(tm)
}

func TestTokenManager_RoundTrip(t *testing.T) {
	tm, err := NewTokenManager(&config.SecurityConfig{JWTSecret: testSecret, SessionTimeout: time.Hour})
	if err != nil {
		t.Fatal(err)
	}

	token, expires, err := tm.Issue("uid-1", true)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(expires) <= 0 {
		t.Errorf("expiry %v is not in the future", expires)
	}

	claims, err := tm.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.Subject != "uid-1" || !claims.Anonymous {
		t.Errorf("claims = %+v", claims)
	}
}

func TestTokenManager_Rejects(t *testing.T) {
	tm, _ := NewTokenManager(&config.SecurityConfig{JWTSecret: testSecret, SessionTimeout: time.Hour})
	other, _ := NewTokenManager(&config.SecurityConfig{JWTSecret: strings.Repeat("z", 40), SessionTimeout: time.Hour})
	foreign, _, _ := other.Issue("uid-1", true)

	expiredMgr, _ := NewTokenManager(&config.SecurityConfig{JWTSecret: testSecret, SessionTimeout: time.Hour})
	expiredMgr.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, _ := expiredMgr.Issue("uid-1", true)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer: tokenIssuer, Subject: "uid-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", foreign},
		{"expired", expired},
		{"alg none", unsigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tm.Validate(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestTokenManager_EphemeralSecret(t *testing.T) {
	a, err := NewTokenManager(&config.SecurityConfig{SessionTimeout: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := NewTokenManager(&config.SecurityConfig{SessionTimeout: time.Hour})

	token, _, _ := a.Issue("uid-1", true)
	if _, err := a.Validate(token); err != nil {
		t.Errorf("own token rejected: %v", err)
	}
	if _, err := b.Validate(token); err == nil {
		t.Error("token accepted by a manager with a different ephemeral secret")
	}
}

func TestProvider_SignInSignOut(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	var seen []string
	unregister := p.OnIdentityChange(func(id *models.Identity) {
		seen = append(seen, models.StatusText(id))
	})

	id, err := p.SignInAnonymously(ctx)
	if err != nil {
		t.Fatalf("SignInAnonymously: %v", err)
	}
	if id.UID == "" || !id.Anonymous || id.Token == "" {
		t.Fatalf("identity = %+v", id)
	}

	again, _ := p.SignInAnonymously(ctx)
	if again.UID != id.UID {
		t.Errorf("second sign-in changed UID: %s -> %s", id.UID, again.UID)
	}

	p.SignOut(ctx)
	p.SignOut(ctx)
	unregister()
	unregister()

	if _, err := p.SignInAnonymously(ctx); err != nil {
		t.Fatal(err)
	}

	want := []string{"Not signed in.", "User ID: " + id.UID, "Not signed in."}
	if len(seen) != len(want) {
		t.Fatalf("transitions = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("transition %d = %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestProvider_SignInCanceledContext(t *testing.T) {
	p := newTestProvider(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.SignInAnonymously(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if p.Current() != nil {
		t.Error("identity set despite failed sign-in")
	}
}

func TestProvider_CurrentIsCopy(t *testing.T) {
	p := newTestProvider(t)
	id, _ := p.SignInAnonymously(context.Background())
	id.UID = "mutated"
	if p.Current().UID == "mutated" {
		t.Error("Current() exposes internal state")
	}
}

func TestProvider_AuthenticateRevokedAfterSignOut(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	first, _ := p.SignInAnonymously(ctx)
	if _, err := p.Authenticate(first.Token); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	p.SignOut(ctx)
	if _, err := p.Authenticate(first.Token); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("after sign-out: error = %v, want ErrNotSignedIn", err)
	}

	if _, err := p.SignInAnonymously(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Authenticate(first.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("stale token: error = %v, want ErrInvalidToken", err)
	}
}

func TestMiddleware(t *testing.T) {
	p := newTestProvider(t)
	id, _ := p.SignInAnonymously(context.Background())

	var gotUID string
	h := Middleware(p, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUID = IdentityFromContext(r.Context()).UID
		if logging.UserIDFromContext(r.Context()) != gotUID {
			t.Error("user id missing from logging context")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"no token", func(*http.Request) {}, http.StatusUnauthorized},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+id.Token) }, http.StatusNoContent},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: TokenCookie, Value: id.Token}) }, http.StatusNoContent},
		{"bad bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"basic scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic "+id.Token) }, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUID = ""
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			tt.setup(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status == http.StatusNoContent && gotUID != id.UID {
				t.Errorf("uid = %q, want %q", gotUID, id.UID)
			}
		})
	}
}

func TestMiddleware_CustomDeny(t *testing.T) {
	p := newTestProvider(t)
	var denied error
	h := Middleware(p, func(w http.ResponseWriter, _ *http.Request, err error) {
		denied = err
		w.WriteHeader(http.StatusTeapot)
	})(http.NotFoundHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	if rec.Code != http.StatusTeapot || !errors.Is(denied, ErrNotSignedIn) {
		t.Errorf("code = %d, err = %v", rec.Code, denied)
	}
}
