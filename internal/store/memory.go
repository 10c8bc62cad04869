// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/tomtom215/homestock/internal/models"
)

// MemoryStore keeps collections in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]models.Item
	feed        *changeFeed
	closed      bool
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]models.Item),
		feed:        newChangeFeed("store-memory"),
	}
}

func (m *MemoryStore) Create(_ context.Context, collection string, item models.Item) (string, error) {
	if err := validateCollection(collection); err != nil {
		return "", err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return "", ErrClosed
	}
	item.ID = uuid.NewString()
	docs, ok := m.collections[collection]
	if !ok {
		docs = make(map[string]models.Item)
		m.collections[collection] = docs
	}
	docs[item.ID] = item
	m.mu.Unlock()

	m.feed.notify(collection, opCreate, item.ID)
	return item.ID, nil
}

func (m *MemoryStore) Update(_ context.Context, collection, id string, fields models.ItemFields) error {
	if err := validateCollection(collection); err != nil {
		return err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	existing, ok := m.collections[collection][id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	m.collections[collection][id] = existing.WithFields(fields)
	m.mu.Unlock()

	m.feed.notify(collection, opUpdate, id)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, collection, id string) error {
	if err := validateCollection(collection); err != nil {
		return err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	delete(m.collections[collection], id)
	m.mu.Unlock()

	m.feed.notify(collection, opDelete, id)
	return nil
}

func (m *MemoryStore) Subscribe(ctx context.Context, collection string) (Subscription, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	m.mu.RLock()
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}
	return m.feed.watch(ctx, collection, func() ([]models.Item, error) {
		return m.list(collection)
	})
}

func (m *MemoryStore) list(collection string) ([]models.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	docs := m.collections[collection]
	items := make([]models.Item, 0, len(docs))
	for _, item := range docs {
		items = append(items, item)
	}
	return sortByID(items), nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()
	return m.feed.close()
}
