// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

package store

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/homestock/internal/logging"
	"github.com/tomtom215/homestock/internal/models"
)

// Change operations carried in message metadata.
const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// changeFeed fans out in-process change notifications, one topic per
// collection. Messages carry no payload; receivers re-read the collection.
type changeFeed struct {
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter
}

func newChangeFeed(component string) *changeFeed {
	logger := logging.NewWatermillLogger(component)
	return &changeFeed{
		pubsub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, logger),
		logger: logger,
	}
}

func (f *changeFeed) notify(collection, op, id string) {
	msg := message.NewMessage(watermill.NewUUID(), nil)
	msg.Metadata.Set("op", op)
	msg.Metadata.Set("id", id)
	if err := f.pubsub.Publish(collection, msg); err != nil {
		f.logger.Error("change notification dropped", err, watermill.LogFields{"collection": collection, "op": op})
	}
}

// watch subscribes to collection before reading the initial snapshot, so
// no change between the read and the subscription can be missed.
func (f *changeFeed) watch(ctx context.Context, collection string, load func() ([]models.Item, error)) (Subscription, error) {
	sub := newSubscription(ctx)
	msgs, err := f.pubsub.Subscribe(sub.ctx, collection)
	if err != nil {
		sub.cancel()
		return nil, err
	}

	sub.start(func(ctx context.Context, emit func(Event)) {
		emit(snapshotEvent(load))
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				msg.Ack()
				drainPending(msgs)
				emit(snapshotEvent(load))
			}
		}
	})
	return sub, nil
}

// drainPending acks queued notifications so a burst of writes produces
// one re-read.
func drainPending(msgs <-chan *message.Message) {
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			msg.Ack()
		default:
			return
		}
	}
}

func snapshotEvent(load func() ([]models.Item, error)) Event {
	items, err := load()
	if err != nil {
		return Event{Err: err}
	}
	return Event{Items: items}
}

func (f *changeFeed) close() error {
	return f.pubsub.Close()
}
