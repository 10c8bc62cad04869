// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package inventory

import (
	"sort"
	"sync/atomic"

	"github.com/tomtom215/homestock/internal/metrics"
	"github.com/tomtom215/homestock/internal/models"
)

type snapshot struct {
	items  []models.Item
	loaded bool
}

var emptySnapshot = &snapshot{}

// Cache holds the latest full snapshot of the collection, newest first.
// It has one writer (the subscription goroutine) and lock-free readers.
type Cache struct {
	current atomic.Pointer[snapshot]
}

// NewCache returns an empty, not yet loaded cache.
func NewCache() *Cache {
	c := &Cache{}
	c.current.Store(emptySnapshot)
	return c
}

// Replace discards the cached set and stores a sorted copy of items.
func (c *Cache) Replace(items []models.Item) {
	sorted := make([]models.Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	c.current.Store(&snapshot{items: sorted, loaded: true})
}

// Reset returns the cache to the empty, not loaded state.
func (c *Cache) Reset() {
	c.current.Store(emptySnapshot)
	metrics.CacheItems.Set(0)
}

// Get returns the cached items. The slice is shared and must not be modified.
func (c *Cache) Get() []models.Item {
	return c.current.Load().items
}

// Loaded reports whether a push has arrived since the last Reset.
func (c *Cache) Loaded() bool {
	return c.current.Load().loaded
}

// Len returns the number of cached items.
func (c *Cache) Len() int {
	return len(c.current.Load().items)
}

// Find looks up an item by ID.
func (c *Cache) Find(id string) (models.Item, bool) {
	for _, it := range c.current.Load().items {
		if it.ID == id {
			return it, true
		}
	}
	return models.Item{}, false
}
