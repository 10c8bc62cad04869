// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/homestock/internal/logging"
	"github.com/tomtom215/homestock/internal/models"
)

// maxUpdateAttempts bounds compare-and-set retries on concurrent edits.
const maxUpdateAttempts = 3

// NATSConfig configures a NATSStore.
type NATSConfig struct {
	URL            string
	Bucket         string
	Replicas       int
	ConnectTimeout time.Duration
	MaxReconnects  int
	Breaker        BreakerConfig
}

// NATSStore keeps items in a JetStream key-value bucket. Each item is a
// key "<collection>.<id>"; a collection is watched with "<collection>.*".
type NATSStore struct {
	nc      *nats.Conn
	kv      jetstream.KeyValue
	breaker *gobreaker.CircuitBreaker[struct{}]
	closed  atomic.Bool
}

// OpenNATS connects to NATS and creates the bucket if needed.
func OpenNATS(ctx context.Context, cfg NATSConfig) (*NATSStore, error) {
	logger := logging.WithComponent("store-nats")

	nc, err := nats.Connect(cfg.URL,
		nats.Name("homestock"),
		nats.Timeout(cfg.ConnectTimeout),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	replicas := cfg.Replicas
	if replicas < 1 {
		replicas = 1
	}
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      cfg.Bucket,
		Description: "Homestock inventory items",
		History:     1,
		Replicas:    replicas,
		Storage:     jetstream.FileStorage,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create KV bucket %s: %w", cfg.Bucket, err)
	}

	breakerCfg := cfg.Breaker
	if breakerCfg.Name == "" {
		breakerCfg.Name = "nats-kv"
	}

	return &NATSStore{nc: nc, kv: kv, breaker: newBreaker(breakerCfg)}, nil
}

// kvCollection maps a collection path onto a single KV key token.
func kvCollection(collection string) string {
	var b strings.Builder
	b.Grow(len(collection))
	for _, r := range collection {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '/', r == '=':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func kvKey(collection, id string) string {
	return kvCollection(collection) + "." + id
}

func (n *NATSStore) Create(ctx context.Context, collection string, item models.Item) (string, error) {
	if err := validateCollection(collection); err != nil {
		return "", err
	}
	if n.closed.Load() {
		return "", ErrClosed
	}

	item.ID = uuid.NewString()
	data, err := json.Marshal(item)
	if err != nil {
		return "", fmt.Errorf("marshal item: %w", err)
	}

	err = guard(n.breaker, func() error {
		_, err := n.kv.Create(ctx, kvKey(collection, item.ID), data)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("create item: %w", err)
	}
	return item.ID, nil
}

func (n *NATSStore) Update(ctx context.Context, collection, id string, fields models.ItemFields) error {
	if err := validateCollection(collection); err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return err
	}
	if n.closed.Load() {
		return ErrClosed
	}

	key := kvKey(collection, id)
	return guard(n.breaker, func() error {
		var lastErr error
		for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
			entry, err := n.kv.Get(ctx, key)
			if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) {
				return ErrNotFound
			}
			if err != nil {
				return fmt.Errorf("get item: %w", err)
			}

			var existing models.Item
			if err := json.Unmarshal(entry.Value(), &existing); err != nil {
				return fmt.Errorf("decode item: %w", err)
			}
			data, err := json.Marshal(existing.WithFields(fields))
			if err != nil {
				return fmt.Errorf("marshal item: %w", err)
			}

			// Revision check keeps a concurrent delete from being undone;
			// field-level last-write-wins comes from retrying on conflict.
			_, lastErr = n.kv.Update(ctx, key, data, entry.Revision())
			if lastErr == nil {
				return nil
			}
			if !errors.Is(lastErr, jetstream.ErrKeyExists) {
				return fmt.Errorf("update item: %w", lastErr)
			}
		}
		return fmt.Errorf("update item: %w", lastErr)
	})
}

func (n *NATSStore) Delete(ctx context.Context, collection, id string) error {
	if err := validateCollection(collection); err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return err
	}
	if n.closed.Load() {
		return ErrClosed
	}

	return guard(n.breaker, func() error {
		if err := n.kv.Delete(ctx, kvKey(collection, id)); err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		return nil
	})
}

// Subscribe watches every key of the collection. The watcher replays the
// current values, signals the end of the replay with a nil entry and then
// streams changes; the local copy is pushed whole after each step.
func (n *NATSStore) Subscribe(ctx context.Context, collection string) (Subscription, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	if n.closed.Load() {
		return nil, ErrClosed
	}

	sub := newSubscription(ctx)
	watcher, err := n.kv.Watch(sub.ctx, kvCollection(collection)+".*")
	if err != nil {
		sub.cancel()
		return nil, fmt.Errorf("watch collection: %w", err)
	}

	sub.start(func(ctx context.Context, emit func(Event)) {
		defer func() { _ = watcher.Stop() }()

		docs := make(map[string]models.Item)
		replayed := false
		for {
			select {
			case <-ctx.Done():
				return
			case entry, ok := <-watcher.Updates():
				if !ok {
					if ctx.Err() == nil {
						emit(Event{Err: fmt.Errorf("watch collection: %w", ErrClosed)})
					}
					return
				}
				if entry == nil {
					replayed = true
					emit(Event{Items: snapshotOf(docs)})
					continue
				}
				if err := applyEntry(docs, entry); err != nil {
					emit(Event{Err: err})
					continue
				}
				if replayed {
					emit(Event{Items: snapshotOf(docs)})
				}
			}
		}
	})
	return sub, nil
}

func applyEntry(docs map[string]models.Item, entry jetstream.KeyValueEntry) error {
	key := entry.Key()
	id := key[strings.LastIndexByte(key, '.')+1:]

	switch entry.Operation() {
	case jetstream.KeyValueDelete, jetstream.KeyValuePurge:
		delete(docs, id)
		return nil
	default:
		var item models.Item
		if err := json.Unmarshal(entry.Value(), &item); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		item.ID = id
		docs[id] = item
		return nil
	}
}

func snapshotOf(docs map[string]models.Item) []models.Item {
	items := make([]models.Item, 0, len(docs))
	for _, item := range docs {
		items = append(items, item)
	}
	return sortByID(items)
}

// Healthy reports whether the NATS connection is up.
func (n *NATSStore) Healthy() bool {
	return !n.closed.Load() && n.nc.IsConnected()
}

func (n *NATSStore) Close() error {
	if !n.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := n.nc.Drain(); err != nil {
		n.nc.Close()
		return fmt.Errorf("drain NATS connection: %w", err)
	}
	return nil
}
