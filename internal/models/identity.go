// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package models

import "time"

// Identity is an authenticated session principal.
type Identity struct {
	UID         string    `json:"uid"`
	Anonymous   bool      `json:"anonymous"`
	SignedInAt  time.Time `json:"signed_in_at"`
	Token       string    `json:"-"`
	TokenExpiry time.Time `json:"token_expiry"`
}

// StatusText is the human-readable sign-in status line.
func StatusText(id *Identity) string {
	if id == nil {
		return "Not signed in."
	}
	return "User ID: " + id.UID
}

// Clone returns a copy of id; nil stays nil.
func (id *Identity) Clone() *Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
