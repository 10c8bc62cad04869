// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

// Package models defines the data types shared across Homestock.
//
// Item is the unit of inventory: a named physical thing with optional
// category, room and container facets, an optional expiration date that
// only applies to food, a creation timestamp and an inline photo.
// ItemFields is the editable subset of an Item; the photo and creation
// time are fixed when the item is created.
//
// Identity describes the signed-in session the inventory is accessed under.
package models
