// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/homestock/internal/models"
)

// itemKeyPrefix namespaces item keys; the collection path and ID are
// separated by a NUL byte, which validateCollection rejects in paths.
const itemKeyPrefix = "item:"

// BadgerConfig configures a BadgerStore.
type BadgerConfig struct {
	Path     string
	InMemory bool
}

// BadgerStore persists collections in BadgerDB.
type BadgerStore struct {
	db     *badger.DB
	feed   *changeFeed
	closed atomic.Bool
}

// OpenBadger opens (or creates) a BadgerDB-backed store.
func OpenBadger(cfg BadgerConfig) (*BadgerStore, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db, feed: newChangeFeed("store-badger")}, nil
}

func collectionPrefix(collection string) []byte {
	return []byte(itemKeyPrefix + collection + "\x00")
}

func itemKey(collection, id string) []byte {
	return append(collectionPrefix(collection), id...)
}

func (b *BadgerStore) Create(_ context.Context, collection string, item models.Item) (string, error) {
	if err := validateCollection(collection); err != nil {
		return "", err
	}
	if b.closed.Load() {
		return "", ErrClosed
	}

	item.ID = uuid.NewString()
	data, err := json.Marshal(item)
	if err != nil {
		return "", fmt.Errorf("marshal item: %w", err)
	}

	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(itemKey(collection, item.ID), data)
	})
	if err != nil {
		return "", fmt.Errorf("set item: %w", err)
	}

	b.feed.notify(collection, opCreate, item.ID)
	return item.ID, nil
}

func (b *BadgerStore) Update(_ context.Context, collection, id string, fields models.ItemFields) error {
	if err := validateCollection(collection); err != nil {
		return err
	}
	if b.closed.Load() {
		return ErrClosed
	}

	key := itemKey(collection, id)
	err := b.db.Update(func(txn *badger.Txn) error {
		entry, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get item: %w", err)
		}

		var existing models.Item
		if err := entry.Value(func(val []byte) error {
			return json.Unmarshal(val, &existing)
		}); err != nil {
			return fmt.Errorf("decode item: %w", err)
		}

		data, err := json.Marshal(existing.WithFields(fields))
		if err != nil {
			return fmt.Errorf("marshal item: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return err
	}

	b.feed.notify(collection, opUpdate, id)
	return nil
}

func (b *BadgerStore) Delete(_ context.Context, collection, id string) error {
	if err := validateCollection(collection); err != nil {
		return err
	}
	if b.closed.Load() {
		return ErrClosed
	}

	if err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(itemKey(collection, id))
	}); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	b.feed.notify(collection, opDelete, id)
	return nil
}

func (b *BadgerStore) Subscribe(ctx context.Context, collection string) (Subscription, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	if b.closed.Load() {
		return nil, ErrClosed
	}
	return b.feed.watch(ctx, collection, func() ([]models.Item, error) {
		return b.list(collection)
	})
}

func (b *BadgerStore) list(collection string) ([]models.Item, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}

	prefix := collectionPrefix(collection)
	var items []models.Item

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var item models.Item
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &item)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Item{}
	}
	return items, nil
}

func (b *BadgerStore) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	feedErr := b.feed.close()
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("close badger: %w", err)
	}
	return feedErr
}
