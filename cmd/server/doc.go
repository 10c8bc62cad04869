// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

// Command server runs the Homestock household inventory tracker.
//
// Startup order:
//
//  1. Configuration: defaults, then config.yaml, then environment (Koanf v2)
//  2. Logging: zerolog with the configured level and format
//  3. Embedded NATS (NATS_EMBEDDED=true): in-process JetStream server
//  4. Record store: memory, Badger or NATS KV (STORE_DRIVER)
//  5. Sessions, inventory service and WebSocket hub
//  6. Export sink: none, file or S3 (EXPORT_SINK)
//  7. Supervisor tree: session bootstrap, hub and HTTP server
//
// SIGINT and SIGTERM cancel the tree; the HTTP server drains within
// HTTP_SHUTDOWN_TIMEOUT, the session signs out (tearing down the live
// query) and the store is closed.
//
// Example:
//
//	export STORE_DRIVER=badger
//	export BADGER_PATH=/data/homestock
//	export JWT_SECRET=$(openssl rand -base64 32)
//	export CORS_ORIGINS=http://localhost:3000
//	./homestock
package main
