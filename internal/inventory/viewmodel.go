// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package inventory

import (
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/homestock/internal/models"
)

// Empty-state messages.
const (
	MessageCacheEmpty    = "Your inventory is empty. Add your first item to get started."
	MessageFilteredEmpty = "No items match your current filters."
)

// Criteria is the active search and facet filter. Empty fields match everything.
type Criteria struct {
	Search    string `json:"search"`
	Room      string `json:"room"`
	Container string `json:"container"`
	Category  string `json:"category"`
}

// Matches reports whether item passes every criterion. Search is a
// case-insensitive substring match on the name; facets match exactly.
func (c Criteria) Matches(item models.Item) bool {
	if c.Search != "" && !strings.Contains(strings.ToLower(item.Name), strings.ToLower(c.Search)) {
		return false
	}
	if c.Room != "" && item.Room != c.Room {
		return false
	}
	if c.Container != "" && item.Container != c.Container {
		return false
	}
	return c.Category == "" || item.Category == c.Category
}

// Filter returns the items matching c, in their original order.
func Filter(items []models.Item, c Criteria) []models.Item {
	out := make([]models.Item, 0, len(items))
	for _, it := range items {
		if c.Matches(it) {
			out = append(out, it)
		}
	}
	return out
}

// Suggestions are the distinct non-empty facet values of a collection,
// sorted ascending.
type Suggestions struct {
	Rooms      []string `json:"rooms"`
	Containers []string `json:"containers"`
	Categories []string `json:"categories"`
}

// BuildSuggestions collects facet values over all of items.
func BuildSuggestions(items []models.Item) Suggestions {
	rooms := make(map[string]struct{})
	containers := make(map[string]struct{})
	categories := make(map[string]struct{})
	for _, it := range items {
		addValue(rooms, it.Room)
		addValue(containers, it.Container)
		addValue(categories, it.Category)
	}
	return Suggestions{
		Rooms:      sortedKeys(rooms),
		Containers: sortedKeys(containers),
		Categories: sortedKeys(categories),
	}
}

func addValue(set map[string]struct{}, v string) {
	if v != "" {
		set[v] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Retain drops facet selections that are no longer offered by s.
// Search text is kept as is.
func (c Criteria) Retain(s Suggestions) Criteria {
	c.Room = retainValue(c.Room, s.Rooms)
	c.Container = retainValue(c.Container, s.Containers)
	c.Category = retainValue(c.Category, s.Categories)
	return c
}

func retainValue(v string, options []string) string {
	if v == "" {
		return ""
	}
	i := sort.SearchStrings(options, v)
	if i < len(options) && options[i] == v {
		return v
	}
	return ""
}

// ViewItem is an item as rendered, with its expiration status for food.
type ViewItem struct {
	models.Item
	Expiration *models.ExpirationStatus `json:"expiration,omitempty"`
}

// View is everything the presentation layer needs to draw the list.
type View struct {
	Items         []ViewItem  `json:"items"`
	Total         int         `json:"total"`
	Loading       bool        `json:"loading"`
	CacheEmpty    bool        `json:"cache_empty"`
	FilteredEmpty bool        `json:"filtered_empty"`
	Message       string      `json:"message,omitempty"`
	Criteria      Criteria    `json:"criteria"`
	Suggestions   Suggestions `json:"suggestions"`
}

// BuildView derives the view of items under c. loading is true until the
// first push.
func BuildView(items []models.Item, loading bool, c Criteria, now time.Time) View {
	sugg := BuildSuggestions(items)
	filtered := Filter(items, c)

	v := View{
		Items:       make([]ViewItem, len(filtered)),
		Total:       len(items),
		Loading:     loading,
		Criteria:    c,
		Suggestions: sugg,
	}
	for i, it := range filtered {
		v.Items[i] = ViewItem{Item: it}
		if status, ok := models.Expiration(it.ExpirationDate, now); ok {
			v.Items[i].Expiration = &status
		}
	}

	switch {
	case loading:
	case len(items) == 0:
		v.CacheEmpty = true
		v.Message = MessageCacheEmpty
	case len(filtered) == 0:
		v.FilteredEmpty = true
		v.Message = MessageFilteredEmpty
	}
	return v
}

// ViewSource produces views of the current cache.
type ViewSource interface {
	View(c Criteria) View
}

// RefreshView rebuilds a standing view after a push: selections that
// vanished from the suggestions are reset first. It returns the view and
// the criteria to keep.
func RefreshView(src ViewSource, c Criteria) (View, Criteria) {
	v := src.View(c)
	if kept := c.Retain(v.Suggestions); kept != c {
		c = kept
		v = src.View(c)
	}
	return v, c
}

// Presenter is the presentation layer driven by the core.
type Presenter interface {
	// Render is called after every applied push.
	Render(src ViewSource)
	// Clear empties the presentation after sign-out.
	Clear()
	// Notify shows a blocking notice.
	Notify(n Notice)
}

type nopPresenter struct{}

func (nopPresenter) Render(ViewSource) {}
func (nopPresenter) Clear()            {}
func (nopPresenter) Notify(Notice)     {}
