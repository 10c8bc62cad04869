// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

// Package store implements the record store: a document collection of
// inventory items with create, update, delete and a live query that pushes
// the complete collection after every change.
//
// Backends:
//
//   - MemoryStore: process-local maps; change notifications over a
//     watermill GoChannel. Used for tests and ephemeral runs.
//   - BadgerStore: durable single-node storage in BadgerDB, sharing the
//     same in-process change feed.
//   - NATSStore: a JetStream key-value bucket. Watches are served by the
//     NATS server, so every process connected to the bucket sees the same
//     collection in real time. Writes go through a circuit breaker.
//
// Every Subscription delivers full snapshots. A slow consumer only ever
// sees the newest pending snapshot; intermediate ones are dropped, which
// is safe because each snapshot supersedes the last.
package store
