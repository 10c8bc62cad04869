// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

// Package inventory is the core of Homestock.
//
// It mirrors the inventory collection of the signed-in identity in a
// snapshot Cache, keeps exactly one live subscription per identity
// (Lifecycle), derives filtered views and facet suggestions from the
// cache, and performs the add, edit, delete and export operations.
//
// Data flow:
//
//	session.Provider --identity--> Lifecycle --Subscribe--> store.Store
//	store push --> Cache.Replace --> Presenter.Render(ViewSource)
//	Service.AddItem/EditItem/DeleteItem --> store write --> next push
//
// The cache is only ever replaced wholesale by a push; writes never touch
// it directly. Every failure is classified by Kind and surfaces both as a
// returned *Error and as a Notice on the Presenter.
package inventory
