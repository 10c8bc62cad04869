// Homestock - Household Inventory Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/homestock

/*
Package services adapts Homestock components to suture.Service.

Each wrapper translates a component's lifecycle (ListenAndServe,
RunWithContext, sign-in then wait, Shutdown) into Serve(ctx) and names
itself through fmt.Stringer for supervisor logs:

  - HTTPServerService: *http.Server with graceful shutdown
  - WebSocketHubService: websocket.Hub
  - SessionService: signs in anonymously at startup and signs out on stop
  - EmbeddedNATSService: watches the in-process NATS server and shuts it down

Wrappers depend on small interfaces rather than concrete types so they can
be tested without the real components.
*/
package services
