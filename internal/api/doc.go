// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

/*
Package api provides the HTTP layer for Homestock.

Routes (all under /api/v1 unless noted):

  - health/live, health/ready: probes, unauthenticated
  - auth/anonymous, auth/status, auth/signout: session management
  - items, items/{id}: list with filters, add (JSON or multipart with a
    photo), edit and confirmed delete
  - suggestions: distinct rooms, containers and categories
  - export.csv, export: CSV download and export to the configured sink
  - ws: WebSocket stream of views and notices
  - /metrics: Prometheus exposition

Every JSON response uses the APIResponse envelope. Inventory failures are
mapped to HTTP status codes by their inventory.Kind.
*/
package api
