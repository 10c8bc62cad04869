// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package models

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used for expiration dates.
const DateLayout = "2006-01-02"

// FoodCategory is the only category for which an expiration date is kept.
const FoodCategory = "food"

// Item is a single inventory record.
type Item struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	Room           string    `json:"room"`
	Container      string    `json:"container"`
	ExpirationDate string    `json:"expiration_date"` // YYYY-MM-DD, food only
	CreatedAt      time.Time `json:"created_at"`      // zero value sorts oldest
	Photo          string    `json:"photo,omitempty"` // data URL
}

// ItemFields is the editable field set of an Item. An edit always replaces
// all five fields.
type ItemFields struct {
	Name           string `json:"name" validate:"required,max=200"`
	Category       string `json:"category" validate:"max=100"`
	Room           string `json:"room" validate:"max=100"`
	Container      string `json:"container" validate:"max=100"`
	ExpirationDate string `json:"expiration_date" validate:"omitempty,isodate"`
}

// IsFood reports whether category names the food category, ignoring case
// and surrounding whitespace.
func IsFood(category string) bool {
	return strings.EqualFold(strings.TrimSpace(category), FoodCategory)
}

// Normalize trims every field and drops the expiration date unless the
// category is food.
func (f ItemFields) Normalize() ItemFields {
	out := ItemFields{
		Name:           strings.TrimSpace(f.Name),
		Category:       strings.TrimSpace(f.Category),
		Room:           strings.TrimSpace(f.Room),
		Container:      strings.TrimSpace(f.Container),
		ExpirationDate: strings.TrimSpace(f.ExpirationDate),
	}
	if !IsFood(out.Category) {
		out.ExpirationDate = ""
	}
	return out
}

// Fields returns the editable subset of the item.
func (i Item) Fields() ItemFields {
	return ItemFields{
		Name:           i.Name,
		Category:       i.Category,
		Room:           i.Room,
		Container:      i.Container,
		ExpirationDate: i.ExpirationDate,
	}
}

// WithFields returns a copy of the item with the five editable fields
// replaced. ID, CreatedAt and Photo are preserved.
func (i Item) WithFields(f ItemFields) Item {
	i.Name = f.Name
	i.Category = f.Category
	i.Room = f.Room
	i.Container = f.Container
	i.ExpirationDate = f.ExpirationDate
	return i
}
