// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

// Package session owns the signed-in identity of the running agent.
//
// Sign-in is anonymous: the Provider mints a random UID and an HS256 JWT
// bound to it. Exactly one identity is current at a time. Listeners
// registered with OnIdentityChange are told about every transition
// (signed in, signed out) in order, and once immediately on registration
// with the current state.
//
// Middleware authenticates HTTP requests by Bearer header or cookie and
// only accepts tokens belonging to the current identity, so signing out
// revokes every token issued before.
package session
